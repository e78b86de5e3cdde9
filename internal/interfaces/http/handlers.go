package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appcontract "github.com/ravi-ivar-7/hilabs/internal/application/contract"
	"github.com/ravi-ivar-7/hilabs/internal/domain/template"
	"github.com/ravi-ivar-7/hilabs/internal/infrastructure/monitoring/logging"
	"github.com/ravi-ivar-7/hilabs/internal/infrastructure/monitoring/prometheus"
	"github.com/ravi-ivar-7/hilabs/pkg/errors"
	"github.com/ravi-ivar-7/hilabs/pkg/types/common"
)

// ContractHandler serves the contract endpoints.
type ContractHandler struct {
	svc         *appcontract.Service
	maxBodySize int64
	metrics     *prometheus.AppMetrics
	log         logging.Logger
}

// NewContractHandler constructs the handler.  metrics may be nil.
func NewContractHandler(svc *appcontract.Service, maxBodySize int64, metrics *prometheus.AppMetrics, log logging.Logger) *ContractHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if maxBodySize <= 0 {
		maxBodySize = 32 << 20
	}
	return &ContractHandler{svc: svc, maxBodySize: maxBodySize, metrics: metrics, log: log.Named("contract_handler")}
}

// Upload accepts a multipart contract document.
//
//	POST /api/v1/contracts
//	form fields: jurisdiction=TN|WA, file=<document>
func (h *ContractHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	if err := r.ParseMultipartForm(h.maxBodySize); err != nil {
		writeError(w, h.log, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid multipart request"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, h.log, errors.New(errors.ErrCodeBadRequest, "file field required"))
		return
	}
	defer file.Close()

	c, err := h.svc.Upload(r.Context(), appcontract.UploadRequest{
		FileName:     header.Filename,
		Jurisdiction: r.FormValue("jurisdiction"),
		Content:      file,
		Size:         header.Size,
		ContentType:  header.Header.Get("Content-Type"),
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ContractsUploadedTotal.WithLabelValues(string(c.Jurisdiction)).Inc()
	}
	writeJSON(w, http.StatusCreated, c)
}

// List returns a page of contracts.
//
//	GET /api/v1/contracts?page=1&size=20
func (h *ContractHandler) List(w http.ResponseWriter, r *http.Request) {
	page := common.Page{
		Number: queryInt(r, "page", 1),
		Size:   queryInt(r, "size", 20),
	}
	contracts, total, err := h.svc.List(r.Context(), page)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"contracts": contracts,
		"total":     total,
		"page":      page.Number,
		"size":      page.Size,
	})
}

// Get returns one contract with its summary.
//
//	GET /api/v1/contracts/{id}
func (h *ContractHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Get(r.Context(), common.ID(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Decisions returns the contract's clause decisions with step traces.
//
//	GET /api/v1/contracts/{id}/decisions
func (h *ContractHandler) Decisions(w http.ResponseWriter, r *http.Request) {
	id := common.ID(chi.URLParam(r, "id"))
	decisions, err := h.svc.Decisions(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"contract_id": id,
		"decisions":   decisions,
	})
}

// Reclassify queues another classification run.
//
//	POST /api/v1/contracts/{id}/classify
func (h *ContractHandler) Reclassify(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Reclassify(r.Context(), common.ID(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusAccepted, c)
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// ─────────────────────────────────────────────────────────────────────────────
// Templates
// ─────────────────────────────────────────────────────────────────────────────

// TemplateHandler serves the template catalog.
type TemplateHandler struct {
	store *template.Store
	log   logging.Logger
}

// NewTemplateHandler constructs the handler.
func NewTemplateHandler(store *template.Store, log logging.Logger) *TemplateHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &TemplateHandler{store: store, log: log.Named("template_handler")}
}

type templateView struct {
	Name         string `json:"name"`
	Jurisdiction string `json:"jurisdiction"`
	Attribute    string `json:"attribute"`
	Text         string `json:"text"`
}

// List returns the template clauses, optionally filtered by jurisdiction.
//
//	GET /api/v1/templates?jurisdiction=TN
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("jurisdiction")
	var j template.Jurisdiction
	if filter != "" {
		parsed, ok := template.ParseJurisdiction(filter)
		if !ok {
			writeError(w, h.log, errors.Newf(errors.ErrCodeJurisdictionUnsupported,
				"jurisdiction %q is not supported", filter))
			return
		}
		j = parsed
	}

	var out []templateView
	for _, tpl := range h.store.All() {
		if j != "" && tpl.Jurisdiction != j {
			continue
		}
		out = append(out, templateView{
			Name:         tpl.Name,
			Jurisdiction: string(tpl.Jurisdiction),
			Attribute:    string(tpl.Attribute),
			Text:         tpl.RawText,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"templates": out})
}
