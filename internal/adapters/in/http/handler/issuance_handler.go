// internal/adapters/in/http/handler/issuance_handler.go
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	borshcodec "minter/internal/adapters/in/borsh"
	"minter/internal/adapters/in/request"
	app "minter/internal/application/issuance"
	issuancedom "minter/internal/domain/issuance"
)

// 1 リクエストあたりの body 上限
const maxRequestBody = 1 << 20

// IssuanceService は handler が必要とする usecase の操作です（*app.IssuanceUsecase が実装）。
type IssuanceService interface {
	MintFungibleToken(ctx context.Context, v issuancedom.Variant) (issuancedom.Record, error)
	MintFungibleAsset(ctx context.Context, v issuancedom.Variant) (issuancedom.Record, error)
	MintNonFungible(ctx context.Context, v issuancedom.Variant) (issuancedom.Record, error)
	Issue(ctx context.Context, v issuancedom.Variant) (issuancedom.Record, error)
	GetByID(ctx context.Context, id string) (issuancedom.Record, error)
	ListByMint(ctx context.Context, mint string) ([]issuancedom.Record, error)
}

var _ IssuanceService = (*app.IssuanceUsecase)(nil)

// IssuanceHandler
//
// Routes:
// - POST /issuances/fungible | /issuances/asset | /issuances/nft
// - POST /issuances          kind は body（JSON）または borsh のタグ
// - GET  /issuances/{id}
// - GET  /issuances?mint={mintAddress}
type IssuanceHandler struct {
	svc IssuanceService
}

func NewIssuanceHandler(svc IssuanceService) *IssuanceHandler {
	return &IssuanceHandler{svc: svc}
}

// Routes は chi.Router に issuance のルートを登録します。
func (h *IssuanceHandler) Routes(r chi.Router) {
	r.Route("/issuances", func(r chi.Router) {
		r.Post("/", h.issue)
		r.Get("/", h.listByMint)
		r.Post("/fungible", h.issueAs("fungible"))
		r.Post("/asset", h.issueAs("asset"))
		r.Post("/nft", h.issueAs("nft"))
		r.Get("/{id}", h.get)
	})
}

// ------------------------------
// POST
// ------------------------------

func (h *IssuanceHandler) issue(w http.ResponseWriter, r *http.Request) {
	v, err := decodeVariant(r, "")
	if err != nil {
		writeIssuanceError(w, issuancedom.Record{}, err)
		return
	}
	rec, err := h.svc.Issue(r.Context(), v)
	h.respondIssued(w, rec, err)
}

// issueAs は種別ごとのエントリポイントに振り分けます。
// payload のタグが違えば usecase が ErrVariantMismatch を返します。
func (h *IssuanceHandler) issueAs(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var entry func(context.Context, issuancedom.Variant) (issuancedom.Record, error)
		switch kind {
		case "fungible":
			entry = h.svc.MintFungibleToken
		case "asset":
			entry = h.svc.MintFungibleAsset
		default:
			entry = h.svc.MintNonFungible
		}

		v, err := decodeVariant(r, kind)
		if err != nil {
			writeIssuanceError(w, issuancedom.Record{}, err)
			return
		}
		rec, err := entry(r.Context(), v)
		h.respondIssued(w, rec, err)
	}
}

func (h *IssuanceHandler) respondIssued(w http.ResponseWriter, rec issuancedom.Record, err error) {
	if err != nil {
		writeIssuanceError(w, rec, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// decodeVariant は Content-Type で JSON / borsh を切り替えます。
func decodeVariant(r *http.Request, defaultKind string) (issuancedom.Variant, error) {
	body := http.MaxBytesReader(nil, r.Body, maxRequestBody)
	defer body.Close()

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/octet-stream" {
		raw, err := io.ReadAll(body)
		if err != nil {
			return nil, errBadBody{err}
		}
		return borshcodec.Decode(raw)
	}

	var req request.IssuanceRequest
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return nil, errBadBody{err}
	}
	return req.ToVariant(defaultKind)
}

type errBadBody struct{ err error }

func (e errBadBody) Error() string { return "invalid body: " + e.err.Error() }
func (e errBadBody) Unwrap() error { return e.err }

// ------------------------------
// GET
// ------------------------------

func (h *IssuanceHandler) get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeIssuanceError(w, issuancedom.Record{}, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *IssuanceHandler) listByMint(w http.ResponseWriter, r *http.Request) {
	mint := strings.TrimSpace(r.URL.Query().Get("mint"))
	if mint == "" {
		badRequest(w, "mint query parameter is required")
		return
	}
	if err := issuancedom.Address(mint).Validate(); err != nil {
		badRequest(w, err.Error())
		return
	}
	recs, err := h.svc.ListByMint(r.Context(), mint)
	if err != nil {
		writeIssuanceError(w, issuancedom.Record{}, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": recs, "totalCount": len(recs)})
}

// ------------------------------
// error → status
// ------------------------------

func writeIssuanceError(w http.ResponseWriter, rec issuancedom.Record, err error) {
	resp := errorResponse{Detail: err.Error()}
	if rec.ID != "" {
		resp.Record = rec
	}

	var (
		bad  errBadBody
		cons *issuancedom.ConstructionError
		step *issuancedom.StepError
		code int
	)
	switch {
	case errors.As(err, &bad),
		errors.Is(err, borshcodec.ErrInvalidPayload),
		errors.Is(err, issuancedom.ErrInvalidVariant),
		errors.Is(err, issuancedom.ErrInvalidRecordID):
		code, resp.Error = http.StatusBadRequest, "invalid_request"
	case errors.Is(err, issuancedom.ErrVariantMismatch):
		code, resp.Error = http.StatusConflict, "variant_mismatch"
	case errors.As(err, &cons):
		code, resp.Error, resp.Slot = http.StatusUnprocessableEntity, "construction_failed", cons.Slot
	case errors.As(err, &step):
		code, resp.Error, resp.Step = http.StatusUnprocessableEntity, "step_failed", step.Step.String()
	case errors.Is(err, issuancedom.ErrNotFound):
		code, resp.Error = http.StatusNotFound, "not_found"
	case errors.Is(err, app.ErrUsecaseNotConfigured), errors.Is(err, app.ErrAuthorityMissing):
		code, resp.Error = http.StatusServiceUnavailable, "not_configured"
	default:
		code, resp.Error = http.StatusInternalServerError, "internal_error"
		log.Printf("[issuance_handler] internal error: %v", err)
	}
	writeJSON(w, code, resp)
}
