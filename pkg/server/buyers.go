package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vipul69-eng/leadbook/pkg/buyers"
	"github.com/vipul69-eng/leadbook/pkg/db/models"
	"github.com/vipul69-eng/leadbook/pkg/filter"
)

// maxImportBodySize bounds the multipart upload; 200 CSV rows fit comfortably.
const maxImportBodySize = 2 << 20

// buyerResponse renders a lead in display vocabulary with its identity and
// timestamps. Clients echo updatedAt back verbatim as the concurrency token.
type buyerResponse struct {
	ID uuid.UUID `json:"id"`
	buyers.BuyerForm
	OwnerID   uuid.UUID `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func renderBuyer(b *models.Buyer) buyerResponse {
	return buyerResponse{
		ID:        b.ID,
		BuyerForm: buyers.FormFromModel(b),
		OwnerID:   b.OwnerID,
		CreatedAt: b.CreatedAt.UTC(),
		UpdatedAt: b.UpdatedAt.UTC(),
	}
}

type historyResponse struct {
	ID        uint            `json:"id"`
	ChangedBy uuid.UUID       `json:"changedBy"`
	ChangedAt time.Time       `json:"changedAt"`
	Diff      json.RawMessage `json:"diff"`
}

func renderHistory(entries []models.BuyerHistory) []historyResponse {
	out := make([]historyResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, historyResponse{
			ID:        e.ID,
			ChangedBy: e.ChangedBy,
			ChangedAt: e.ChangedAt.UTC(),
			Diff:      json.RawMessage(e.Diff),
		})
	}
	return out
}

// enumParams maps simple query parameters to their column and enum table.
var enumParams = []struct {
	param  string
	column string
	table  *buyers.EnumTable
}{
	{"city", "city", buyers.Cities},
	{"propertyType", "property_type", buyers.PropertyTypes},
	{"status", "status", buyers.Statuses},
	{"timeline", "timeline", buyers.Timelines},
}

// sortColumns maps API sort keys to columns.
var sortColumns = map[string]string{
	"fullName":     "full_name",
	"email":        "email",
	"phone":        "phone",
	"city":         "city",
	"propertyType": "property_type",
	"status":       "status",
	"timeline":     "timeline",
	"budgetMin":    "budget_min",
	"budgetMax":    "budget_max",
	"createdAt":    "created_at",
	"updatedAt":    "updated_at",
}

// listOptionsFromRequest builds list options from the query string: simple
// enum parameters, free-text search, "field:direction" sort and page number.
// A DataGrid-style filter JSON parameter is honored as well.
func listOptionsFromRequest(req *http.Request) (buyers.ListOptions, error) {
	fopts, err := filter.OptionsFromRequest(req, "updated_at", filter.SortDescending)
	if err != nil {
		return buyers.ListOptions{}, &buyers.BadRequestError{Message: err.Error()}
	}

	opts := buyers.ListOptions{
		Filter:    fopts.Filter,
		Search:    strings.TrimSpace(req.URL.Query().Get("search")),
		SortField: fopts.SortField,
		Sort:      fopts.Sort,
	}

	for _, p := range enumParams {
		value := req.URL.Query().Get(p.param)
		if value == "" {
			continue
		}
		if !p.table.Contains(value) {
			return buyers.ListOptions{}, &buyers.BadRequestError{
				Message: fmt.Sprintf("unknown %s value %q", p.param, value),
			}
		}
		stored, err := p.table.ToStorage(value)
		if err != nil {
			return buyers.ListOptions{}, err
		}
		opts.Filter.Items = append(opts.Filter.Items, filter.FilterItem{
			Field:    p.column,
			Operator: filter.OperatorEquals,
			Value:    stored,
		})
	}

	if sortParam := req.URL.Query().Get("sort"); sortParam != "" {
		field, direction, _ := strings.Cut(sortParam, ":")
		column, ok := sortColumns[field]
		if !ok {
			return buyers.ListOptions{}, &buyers.BadRequestError{
				Message: fmt.Sprintf("unknown sort field %q", field),
			}
		}
		opts.SortField = column
		switch direction {
		case "", "desc":
			opts.Sort = filter.SortDescending
		case "asc":
			opts.Sort = filter.SortAscending
		default:
			return buyers.ListOptions{}, &buyers.BadRequestError{
				Message: fmt.Sprintf("unknown sort direction %q", direction),
			}
		}
	}

	if pageParam := req.URL.Query().Get("page"); pageParam != "" {
		page, err := strconv.Atoi(pageParam)
		if err != nil || page < 1 {
			return buyers.ListOptions{}, &buyers.BadRequestError{Message: "page must be a positive number"}
		}
		opts.Page = page
	}
	if fopts.Limit > 0 && fopts.Limit <= 100 {
		opts.PageSize = fopts.Limit
	}
	return opts, nil
}

func (s *Server) buyersCollection(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		s.listBuyers(w, req)
	case http.MethodPost:
		s.createBuyer(w, req)
	default:
		respondError(http.StatusMethodNotAllowed, w, "method not allowed")
	}
}

func (s *Server) listBuyers(w http.ResponseWriter, req *http.Request) {
	opts, err := listOptionsFromRequest(req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	leads, total, err := s.buyerSvc.List(req.Context(), opts)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	items := make([]buyerResponse, 0, len(leads))
	for i := range leads {
		items = append(items, renderBuyer(&leads[i]))
	}
	pageSize := opts.PageSize
	if pageSize == 0 {
		pageSize = buyers.DefaultPageSize
	}
	page := opts.Page
	if page < 1 {
		page = 1
	}
	RespondWithJSON(http.StatusOK, w, map[string]interface{}{
		"items":    items,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

func (s *Server) createBuyer(w http.ResponseWriter, req *http.Request) {
	var form buyers.BuyerForm
	if err := json.NewDecoder(req.Body).Decode(&form); err != nil {
		respondError(http.StatusBadRequest, w, "could not parse request body")
		return
	}

	session := sessionFromContext(req.Context())
	buyer, err := s.buyerSvc.Create(req.Context(), session, form)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	RespondWithJSON(http.StatusCreated, w, renderBuyer(buyer))
}

// buyerItem routes /api/buyers/{id} and /api/buyers/{id}/history.
func (s *Server) buyerItem(w http.ResponseWriter, req *http.Request) {
	rest := strings.TrimPrefix(req.URL.Path, "/api/buyers/")
	idPart, sub, _ := strings.Cut(rest, "/")

	id, err := uuid.Parse(idPart)
	if err != nil {
		respondError(http.StatusNotFound, w, "not found")
		return
	}

	switch {
	case sub == "history":
		s.buyerHistory(w, req, id)
	case sub == "":
		switch req.Method {
		case http.MethodGet:
			s.getBuyer(w, req, id)
		case http.MethodPut:
			s.updateBuyer(w, req, id)
		case http.MethodDelete:
			s.deleteBuyer(w, req, id)
		default:
			respondError(http.StatusMethodNotAllowed, w, "method not allowed")
		}
	default:
		respondError(http.StatusNotFound, w, "not found")
	}
}

func (s *Server) getBuyer(w http.ResponseWriter, req *http.Request, id uuid.UUID) {
	session := sessionFromContext(req.Context())
	buyer, history, err := s.buyerSvc.Get(req.Context(), session, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	RespondWithJSON(http.StatusOK, w, map[string]interface{}{
		"buyer":   renderBuyer(buyer),
		"history": renderHistory(history),
	})
}

// updateRequest is a partial lead update plus the caller's last-observed
// updatedAt, which the concurrency protocol requires.
type updateRequest struct {
	buyers.BuyerPatch
	UpdatedAt *time.Time `json:"updatedAt"`
}

func (s *Server) updateBuyer(w http.ResponseWriter, req *http.Request, id uuid.UUID) {
	session := sessionFromContext(req.Context())
	if !s.limiter.Allow("update:" + session.Sub.String()) {
		respondError(http.StatusTooManyRequests, w, "rate limit exceeded")
		return
	}

	var body updateRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(http.StatusBadRequest, w, "could not parse request body")
		return
	}
	if body.UpdatedAt == nil {
		respondError(http.StatusBadRequest, w, "updatedAt is required")
		return
	}

	buyer, err := s.buyerSvc.Update(req.Context(), session, id, body.BuyerPatch, *body.UpdatedAt)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	RespondWithJSON(http.StatusOK, w, renderBuyer(buyer))
}

func (s *Server) deleteBuyer(w http.ResponseWriter, req *http.Request, id uuid.UUID) {
	session := sessionFromContext(req.Context())
	if err := s.buyerSvc.Delete(req.Context(), session, id); err != nil {
		respondServiceError(w, err)
		return
	}
	RespondWithJSON(http.StatusOK, w, map[string]bool{"deleted": true})
}

func (s *Server) buyerHistory(w http.ResponseWriter, req *http.Request, id uuid.UUID) {
	if req.Method != http.MethodGet {
		respondError(http.StatusMethodNotAllowed, w, "method not allowed")
		return
	}

	limit := 0
	if limitParam := req.URL.Query().Get("limit"); limitParam != "" {
		limit, _ = strconv.Atoi(limitParam)
	}

	session := sessionFromContext(req.Context())
	history, err := s.buyerSvc.History(req.Context(), session, id, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	RespondWithJSON(http.StatusOK, w, map[string]interface{}{
		"history": renderHistory(history),
	})
}

func (s *Server) importBuyers(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		respondError(http.StatusMethodNotAllowed, w, "method not allowed")
		return
	}

	req.Body = http.MaxBytesReader(w, req.Body, maxImportBodySize)
	if err := req.ParseMultipartForm(maxImportBodySize); err != nil {
		respondError(http.StatusBadRequest, w, "could not parse multipart form")
		return
	}
	file, _, err := req.FormFile("file")
	if err != nil {
		respondError(http.StatusBadRequest, w, "missing file field")
		return
	}
	defer file.Close()

	session := sessionFromContext(req.Context())
	result, err := s.buyerSvc.ImportCSV(req.Context(), session, file)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	RespondWithJSON(http.StatusOK, w, result)
}

func (s *Server) exportBuyers(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		respondError(http.StatusMethodNotAllowed, w, "method not allowed")
		return
	}

	opts, err := listOptionsFromRequest(req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="buyers.csv"`)
	if err := s.buyerSvc.ExportCSV(req.Context(), w, opts); err != nil {
		// Headers are already written, nothing more we can do for the client.
		log.WithError(err).Error("csv export failed")
	}
}

func (s *Server) tags(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		respondError(http.StatusMethodNotAllowed, w, "method not allowed")
		return
	}

	tags, err := s.buyerSvc.Tags(req.Context(), req.URL.Query().Get("q"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	RespondWithJSON(http.StatusOK, w, map[string]interface{}{"tags": tags})
}
