package api

import (
	"net/http"
	"strconv"
	"strings"

	"chicktrack/c/domain"
	"chicktrack/c/internal/service"
)

// Public tracking: farmers look up their requests by NIN, no login needed.
func (h *Handler) trackRequests(w http.ResponseWriter, r *http.Request) {
	nin := strings.TrimSpace(r.URL.Query().Get("nin"))
	if nin == "" {
		respondError(w, http.StatusBadRequest, "nin query parameter is required")
		return
	}
	requests, err := h.svc.RequestsByFarmerNIN(nin)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, requests)
}

// Request lifecycle handlers

type submitRequestBody struct {
	FarmerNIN  string `json:"farmer_nin"`
	ChickType  string `json:"chick_type"`
	ChickBreed string `json:"chick_breed"`
	Quantity   int64  `json:"quantity"`
}

func (h *Handler) submitRequest(w http.ResponseWriter, r *http.Request) {
	if !h.requireOp(w, r, service.OpSubmitRequest) {
		return
	}
	var body submitRequestBody
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req, err := h.svc.SubmitRequest(body.FarmerNIN, body.ChickType, body.ChickBreed, body.Quantity)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, req)
}

func (h *Handler) listRequests(w http.ResponseWriter, r *http.Request) {
	if !h.requireOp(w, r, service.OpViewRequests) {
		return
	}
	requests, err := h.svc.ListRequests(strings.TrimSpace(r.URL.Query().Get("status")))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, requests)
}

func (h *Handler) getRequest(w http.ResponseWriter, r *http.Request) {
	if !h.requireOp(w, r, service.OpViewRequests) {
		return
	}
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request id")
		return
	}
	req, err := h.svc.GetRequest(id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

func (h *Handler) approveRequest(w http.ResponseWriter, r *http.Request) {
	if !h.requireOp(w, r, service.OpApproveRequest) {
		return
	}
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request id")
		return
	}
	req, err := h.svc.ApproveRequest(id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

func (h *Handler) rejectRequest(w http.ResponseWriter, r *http.Request) {
	if !h.requireOp(w, r, service.OpRejectRequest) {
		return
	}
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request id")
		return
	}
	req, err := h.svc.RejectRequest(id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

func (h *Handler) cancelRequest(w http.ResponseWriter, r *http.Request) {
	if !h.requireOp(w, r, service.OpCancelRequest) {
		return
	}
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request id")
		return
	}
	req, err := h.svc.CancelRequest(id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

// Sale handlers

type processSaleBody struct {
	RequestID int64  `json:"request_id"`
	Notes     string `json:"notes"`
}

func (h *Handler) processSale(w http.ResponseWriter, r *http.Request) {
	if !h.requireOp(w, r, service.OpProcessSale) {
		return
	}
	var body processSaleBody
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.RequestID <= 0 {
		respondError(w, http.StatusBadRequest, "request_id is required")
		return
	}
	result, err := h.svc.ProcessSale(body.RequestID, body.Notes)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	if !h.requireOp(w, r, service.OpViewSales) {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	sales, err := h.svc.ListSales(limit)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sales)
}

func (h *Handler) getSale(w http.ResponseWriter, r *http.Request) {
	if !h.requireOp(w, r, service.OpViewSales) {
		return
	}
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid sale id")
		return
	}
	sale, err := h.svc.GetSale(id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sale)
}

// Reports

type stockBreakdown struct {
	ChickType  string `db:"chick_type" json:"chick_type"`
	ChickBreed string `db:"chick_breed" json:"chick_breed"`
	Quantity   int64  `db:"total" json:"quantity"`
}

func (h *Handler) managerReport(w http.ResponseWriter, r *http.Request) {
	if !h.requireOp(w, r, service.OpManagerReport) {
		return
	}

	var totalChicks int64
	if err := h.db.Get(&totalChicks, `SELECT COALESCE(SUM(quantity), 0) FROM chick_stock`); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to build report")
		return
	}

	breakdown := []stockBreakdown{}
	if err := h.db.Select(&breakdown, `SELECT chick_type, chick_breed, SUM(quantity) AS total
        FROM chick_stock GROUP BY chick_type, chick_breed ORDER BY chick_type, chick_breed`); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to build report")
		return
	}

	var totalFeed int64
	if err := h.db.Get(&totalFeed, `SELECT COALESCE(SUM(quantity), 0) FROM feed_stock`); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to build report")
		return
	}

	// Potential profit assumes all current feed stock sells at selling price.
	var feedProfit float64
	if err := h.db.Get(&feedProfit, `SELECT COALESCE(SUM((COALESCE(selling_price, 0) - COALESCE(buying_price, 0)) * quantity), 0) FROM feed_stock`); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to build report")
		return
	}

	counts, err := h.farmerCounts()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to build report")
		return
	}

	pending := []domain.ChickRequest{}
	if reqs, err := h.svc.ListRequests(domain.RequestPending); err == nil {
		pending = reqs
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"total_chicks":          totalChicks,
		"stock_breakdown":       breakdown,
		"total_feed_quantity":   totalFeed,
		"feed_potential_profit": feedProfit,
		"farmers":               counts,
		"pending_requests":      pending,
	})
}

func (h *Handler) salesReport(w http.ResponseWriter, r *http.Request) {
	if !h.requireOp(w, r, service.OpSalesReport) {
		return
	}

	counts, err := h.farmerCounts()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to build report")
		return
	}

	var totalRevenue float64
	if err := h.db.Get(&totalRevenue, `SELECT COALESCE(SUM(amount), 0) FROM sales`); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to build report")
		return
	}

	requestCounts := map[string]int64{}
	rows := []struct {
		Status string `db:"status"`
		Count  int64  `db:"count"`
	}{}
	if err := h.db.Select(&rows, `SELECT status, COUNT(*) AS count FROM chick_requests GROUP BY status`); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to build report")
		return
	}
	for _, row := range rows {
		requestCounts[row.Status] = row.Count
	}

	recent, err := h.svc.ListSales(5)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"farmers":        counts,
		"total_revenue":  totalRevenue,
		"request_counts": requestCounts,
		"recent_sales":   recent,
	})
}

type farmerCountReport struct {
	Total     int64 `json:"total"`
	Starter   int64 `json:"starter"`
	Returning int64 `json:"returning"`
}

func (h *Handler) farmerCounts() (farmerCountReport, error) {
	var counts farmerCountReport
	if err := h.db.Get(&counts.Total, `SELECT COUNT(*) FROM farmers`); err != nil {
		return counts, err
	}
	if err := h.db.Get(&counts.Starter, `SELECT COUNT(*) FROM farmers WHERE farmer_type = 'Starter'`); err != nil {
		return counts, err
	}
	if err := h.db.Get(&counts.Returning, `SELECT COUNT(*) FROM farmers WHERE farmer_type = 'Returning'`); err != nil {
		return counts, err
	}
	return counts, nil
}
