package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"chicktrack/c/domain"
	"chicktrack/c/internal/service"
)

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// Farmer handlers

type farmerRequest struct {
	Name             string `json:"name"`
	NIN              string `json:"nin"`
	Gender           string `json:"gender"`
	DateOfBirth      string `json:"date_of_birth"`
	Phone            string `json:"phone"`
	Address          string `json:"address"`
	Email            string `json:"email"`
	FarmerType       string `json:"farmer_type"`
	RecommenderName  string `json:"recommender_name"`
	RecommenderNIN   string `json:"recommender_nin"`
	RecommenderPhone string `json:"recommender_phone"`
}

func validFarmerType(t string) bool {
	return t == domain.FarmerStarter || t == domain.FarmerReturning
}

func (h *Handler) createFarmer(w http.ResponseWriter, r *http.Request) {
	if !h.requireOp(w, r, service.OpManageFarmers) {
		return
	}
	var req farmerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" || req.NIN == "" || req.Email == "" {
		respondError(w, http.StatusBadRequest, "name, nin and email are required")
		return
	}
	if !validFarmerType(req.FarmerType) {
		respondError(w, http.StatusBadRequest, "farmer_type must be Starter or Returning")
		return
	}

	res, err := h.db.Exec(`INSERT INTO farmers (name, nin, gender, date_of_birth, phone, address, email, farmer_type, recommender_name, recommender_nin, recommender_phone)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.Name, strings.TrimSpace(req.NIN), req.Gender, req.DateOfBirth, req.Phone, req.Address,
		strings.ToLower(req.Email), req.FarmerType, req.RecommenderName, req.RecommenderNIN, req.RecommenderPhone)
	if err != nil {
		respondError(w, http.StatusConflict, "a farmer with this NIN or email already exists")
		return
	}
	id, err := res.LastInsertId()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to register farmer")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"id": id, "nin": strings.TrimSpace(req.NIN)})
}

func (h *Handler) listFarmers(w http.ResponseWriter, r *http.Request) {
	farmers := []domain.Farmer{}
	if err := h.db.Select(&farmers, `SELECT id, name, nin, gender, date_of_birth, phone, address, email, farmer_type,
        recommender_name, recommender_nin, recommender_phone, registered_at FROM farmers ORDER BY name`); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list farmers")
		return
	}
	respondJSON(w, http.StatusOK, farmers)
}

func (h *Handler) getFarmer(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid farmer id")
		return
	}
	var farmer domain.Farmer
	err = h.db.Get(&farmer, `SELECT id, name, nin, gender, date_of_birth, phone, address, email, farmer_type,
        recommender_name, recommender_nin, recommender_phone, registered_at FROM farmers WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "farmer not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load farmer")
		return
	}
	respondJSON(w, http.StatusOK, farmer)
}

// updateFarmer changes contact and classification fields. The NIN is part of
// the farmer's identity and cannot be changed here.
func (h *Handler) updateFarmer(w http.ResponseWriter, r *http.Request) {
	if !h.requireOp(w, r, service.OpManageFarmers) {
		return
	}
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid farmer id")
		return
	}
	var req farmerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" || req.Email == "" {
		respondError(w, http.StatusBadRequest, "name and email are required")
		return
	}
	if !validFarmerType(req.FarmerType) {
		respondError(w, http.StatusBadRequest, "farmer_type must be Starter or Returning")
		return
	}
	res, err := h.db.Exec(`UPDATE farmers SET name = ?, gender = ?, date_of_birth = ?, phone = ?, address = ?, email = ?, farmer_type = ?,
        recommender_name = ?, recommender_nin = ?, recommender_phone = ? WHERE id = ?`,
		req.Name, req.Gender, req.DateOfBirth, req.Phone, req.Address, strings.ToLower(req.Email), req.FarmerType,
		req.RecommenderName, req.RecommenderNIN, req.RecommenderPhone, id)
	if err != nil {
		respondError(w, http.StatusConflict, "unable to update farmer")
		return
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		respondError(w, http.StatusNotFound, "farmer not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) deleteFarmer(w http.ResponseWriter, r *http.Request) {
	if !h.requireOp(w, r, service.OpManageFarmers) {
		return
	}
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid farmer id")
		return
	}
	res, err := h.db.Exec(`DELETE FROM farmers WHERE id = ?`, id)
	if err != nil {
		respondError(w, http.StatusConflict, "farmer has linked records and cannot be deleted")
		return
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		respondError(w, http.StatusNotFound, "farmer not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Chick stock handlers

type stockRequest struct {
	BatchNumber string `json:"batch_number"`
	ChickType   string `json:"chick_type"`
	ChickBreed  string `json:"chick_breed"`
	UnitPrice   int64  `json:"unit_price"`
	Quantity    int64  `json:"quantity"`
	AgePeriod   int64  `json:"age_period"`
}

func (h *Handler) createStock(w http.ResponseWriter, r *http.Request) {
	if !h.requireOp(w, r, service.OpManageStock) {
		return
	}
	var req stockRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.BatchNumber == "" || req.ChickType == "" || req.ChickBreed == "" {
		respondError(w, http.StatusBadRequest, "batch_number, chick_type and chick_breed are required")
		return
	}
	if req.Quantity < 0 || req.AgePeriod < 0 || req.UnitPrice < 0 {
		respondError(w, http.StatusBadRequest, "quantity, price and age must be positive integers")
		return
	}
	res, err := h.db.Exec(`INSERT INTO chick_stock (batch_number, chick_type, chick_breed, unit_price, quantity, age_period, registered_by, date_added)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		req.BatchNumber, req.ChickType, req.ChickBreed, req.UnitPrice, req.Quantity, req.AgePeriod,
		h.actorName(r), time.Now().UTC().Format("2006-01-02"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to add stock")
		return
	}
	id, _ := res.LastInsertId()
	respondJSON(w, http.StatusCreated, map[string]any{"id": id, "batch_number": req.BatchNumber})
}

func (h *Handler) listStock(w http.ResponseWriter, r *http.Request) {
	stocks := []domain.ChickStock{}
	if err := h.db.Select(&stocks, `SELECT id, batch_number, chick_type, chick_breed, unit_price, quantity, age_period, registered_by, date_added
        FROM chick_stock ORDER BY date_added ASC, id ASC`); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list stock")
		return
	}
	respondJSON(w, http.StatusOK, stocks)
}

func (h *Handler) getStock(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid stock id")
		return
	}
	var stock domain.ChickStock
	err = h.db.Get(&stock, `SELECT id, batch_number, chick_type, chick_breed, unit_price, quantity, age_period, registered_by, date_added
        FROM chick_stock WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "stock lot not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load stock lot")
		return
	}
	respondJSON(w, http.StatusOK, stock)
}

func (h *Handler) updateStock(w http.ResponseWriter, r *http.Request) {
	if !h.requireOp(w, r, service.OpManageStock) {
		return
	}
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid stock id")
		return
	}
	var req stockRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Quantity < 0 || req.AgePeriod < 0 || req.UnitPrice < 0 {
		respondError(w, http.StatusBadRequest, "quantity, price and age must be positive integers")
		return
	}
	res, err := h.db.Exec(`UPDATE chick_stock SET batch_number = ?, chick_type = ?, chick_breed = ?, unit_price = ?, quantity = ?, age_period = ? WHERE id = ?`,
		req.BatchNumber, req.ChickType, req.ChickBreed, req.UnitPrice, req.Quantity, req.AgePeriod, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update stock")
		return
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		respondError(w, http.StatusNotFound, "stock lot not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) deleteStock(w http.ResponseWriter, r *http.Request) {
	if !h.requireOp(w, r, service.OpManageStock) {
		return
	}
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid stock id")
		return
	}
	res, err := h.db.Exec(`DELETE FROM chick_stock WHERE id = ?`, id)
	if err != nil {
		respondError(w, http.StatusConflict, "stock lot has allocations and cannot be deleted")
		return
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		respondError(w, http.StatusNotFound, "stock lot not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Feed stock handlers

type feedRequest struct {
	Name            string   `json:"name"`
	FeedType        string   `json:"feed_type"`
	FeedBrand       string   `json:"feed_brand"`
	Quantity        int64    `json:"quantity"`
	UnitPrice       float64  `json:"unit_price"`
	BuyingPrice     *float64 `json:"buying_price"`
	SellingPrice    *float64 `json:"selling_price"`
	Supplier        string   `json:"supplier"`
	SupplierContact string   `json:"supplier_contact"`
}

func (h *Handler) createFeed(w http.ResponseWriter, r *http.Request) {
	if !h.requireOp(w, r, service.OpManageFeed) {
		return
	}
	var req feedRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Quantity < 0 || req.UnitPrice < 0 {
		respondError(w, http.StatusBadRequest, "quantity and prices must be valid numbers")
		return
	}
	res, err := h.db.Exec(`INSERT INTO feed_stock (name, feed_type, feed_brand, quantity, unit_price, buying_price, selling_price, supplier, supplier_contact, date_added)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.Name, req.FeedType, req.FeedBrand, req.Quantity, req.UnitPrice, req.BuyingPrice, req.SellingPrice,
		req.Supplier, req.SupplierContact, time.Now().UTC().Format("2006-01-02"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to add feed stock")
		return
	}
	id, _ := res.LastInsertId()
	respondJSON(w, http.StatusCreated, map[string]any{"id": id, "name": req.Name})
}

func (h *Handler) listFeed(w http.ResponseWriter, r *http.Request) {
	feeds := []domain.FeedStock{}
	if err := h.db.Select(&feeds, `SELECT id, name, feed_type, feed_brand, quantity, unit_price, buying_price, selling_price, supplier, supplier_contact, date_added
        FROM feed_stock ORDER BY date_added DESC, id DESC`); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list feed stock")
		return
	}
	respondJSON(w, http.StatusOK, feeds)
}

func (h *Handler) getFeed(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid feed id")
		return
	}
	var feed domain.FeedStock
	err = h.db.Get(&feed, `SELECT id, name, feed_type, feed_brand, quantity, unit_price, buying_price, selling_price, supplier, supplier_contact, date_added
        FROM feed_stock WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "feed stock item not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load feed stock item")
		return
	}
	respondJSON(w, http.StatusOK, feed)
}

func (h *Handler) updateFeed(w http.ResponseWriter, r *http.Request) {
	if !h.requireOp(w, r, service.OpManageFeed) {
		return
	}
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid feed id")
		return
	}
	var req feedRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Quantity < 0 || req.UnitPrice < 0 {
		respondError(w, http.StatusBadRequest, "quantity and prices must be valid numbers")
		return
	}
	res, err := h.db.Exec(`UPDATE feed_stock SET name = ?, feed_type = ?, feed_brand = ?, quantity = ?, unit_price = ?, buying_price = ?, selling_price = ?, supplier = ?, supplier_contact = ? WHERE id = ?`,
		req.Name, req.FeedType, req.FeedBrand, req.Quantity, req.UnitPrice, req.BuyingPrice, req.SellingPrice,
		req.Supplier, req.SupplierContact, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update feed stock")
		return
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		respondError(w, http.StatusNotFound, "feed stock item not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) deleteFeed(w http.ResponseWriter, r *http.Request) {
	if !h.requireOp(w, r, service.OpManageFeed) {
		return
	}
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid feed id")
		return
	}
	res, err := h.db.Exec(`DELETE FROM feed_stock WHERE id = ?`, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete feed stock")
		return
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		respondError(w, http.StatusNotFound, "feed stock item not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
