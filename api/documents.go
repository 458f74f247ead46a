package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/proseplay/proseplay/annotation"
	"github.com/proseplay/proseplay/play"
)

type WindowResponse struct {
	Index       int      `json:"index"`
	Choices     []string `json:"choices"`
	Functions   []string `json:"functions"`
	Current     int      `json:"current"`
	LinkIndex   int      `json:"link_index,omitempty"`
	Orientation string   `json:"orientation"`
	State       string   `json:"state"`
}

type DocumentResponse struct {
	ID             string               `json:"id"`
	Sample         string               `json:"sample,omitempty"`
	Snapshot       string               `json:"snapshot"`
	Windows        []WindowResponse     `json:"windows"`
	CurrentIndexes []int                `json:"current_indexes"`
	Links          map[int][]int        `json:"links"`
	Expanded       bool                 `json:"expanded"`
	Functions      []string             `json:"functions"`
	Triggered      []play.Trigger       `json:"triggered"`
	Warnings       []annotation.Warning `json:"warnings"`
	CreatedAt      time.Time            `json:"created_at"`
	ExpiresAt      time.Time            `json:"expires_at"`
}

// createDocumentResponse must be called with live.mu held.
func createDocumentResponse(live *liveDocument) DocumentResponse {
	doc := live.doc

	windows := doc.Windows()
	resp := DocumentResponse{
		ID:             live.session.ID,
		Sample:         live.session.Sample,
		Snapshot:       doc.Snapshot(),
		Windows:        make([]WindowResponse, len(windows)),
		CurrentIndexes: doc.CurrentIndexes(),
		Links:          doc.Links(),
		Expanded:       doc.IsExpanded(),
		Functions:      doc.FunctionNames(),
		Triggered:      live.triggers.drain(),
		Warnings:       doc.Warnings(),
		CreatedAt:      live.session.CreatedAt,
		ExpiresAt:      live.session.ExpiresAt,
	}

	for i, w := range windows {
		choices := w.Choices()
		wr := WindowResponse{
			Index:       w.Index(),
			Choices:     make([]string, len(choices)),
			Functions:   make([]string, len(choices)),
			Current:     w.Current(),
			LinkIndex:   w.LinkIndex(),
			Orientation: w.Orientation().String(),
			State:       w.State().String(),
		}

		for j, c := range choices {
			wr.Choices[j] = c.Text
			wr.Functions[j] = c.Function
		}

		resp.Windows[i] = wr
	}

	return resp
}

type CreateDocumentRequest struct {
	Text string `json:"text" binding:"required"`
}

func (service *Service) createDocument(ctx *gin.Context) {
	var req CreateDocumentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(
			http.StatusBadRequest,
			NewErrorResponse(ErrInvalidParams, ExtractErrorFields(err)...),
		)
		return
	}

	if limit := service.config.MaxTextLength; limit > 0 && utf8.RuneCountInString(req.Text) > limit {
		field := ErrorField{"text", fmt.Sprintf("value is too long, at most %d characters are allowed", limit)}
		ctx.JSON(http.StatusBadRequest, NewErrorResponse(ErrInvalidParams, field))
		return
	}

	service.startDocument(ctx, req.Text, "")
}

// startDocument opens, saves and returns a new document.
func (service *Service) startDocument(ctx *gin.Context, source, sample string) {
	live := service.openDocument(source, sample)

	live.mu.Lock()
	defer live.mu.Unlock()

	if err := service.saveDocument(ctx, live); err != nil {
		ctx.JSON(http.StatusInternalServerError, NewErrorResponse(err))
		return
	}

	service.docs.put(live.session.ID, live, live.session.ExpiresAt)

	ctx.JSON(http.StatusCreated, createDocumentResponse(live))
}

// withDocument looks the document up and calls fn with the document locked.
// Lookup errors are written as the response.
func (service *Service) withDocument(ctx *gin.Context, fn func(live *liveDocument)) {
	id := extractDocumentIDFromCtx(ctx)

	live, err := service.lookupDocument(ctx, id)
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			err := fmt.Errorf("document with id [%s] not found or expired", id)
			ctx.JSON(http.StatusNotFound, NewErrorResponse(err))
			return
		}

		ctx.JSON(http.StatusInternalServerError, NewErrorResponse(err))
		return
	}

	live.mu.Lock()
	defer live.mu.Unlock()

	fn(live)
}

func (service *Service) getDocument(ctx *gin.Context) {
	service.withDocument(ctx, func(live *liveDocument) {
		ctx.JSON(http.StatusOK, createDocumentResponse(live))
	})
}

func (service *Service) getSnapshot(ctx *gin.Context) {
	service.withDocument(ctx, func(live *liveDocument) {
		ctx.String(http.StatusOK, live.doc.Snapshot())
	})
}

func (service *Service) deleteDocument(ctx *gin.Context) {
	id := extractDocumentIDFromCtx(ctx)

	if err := service.store.DeleteSession(ctx, id); err != nil {
		ctx.JSON(http.StatusInternalServerError, NewErrorResponse(err))
		return
	}

	service.docs.remove(id)

	ctx.Status(http.StatusNoContent)
}

// mutateDocument applies fn, saves the new state and responds with the document.
func (service *Service) mutateDocument(ctx *gin.Context, fn func(doc *play.Document) error) {
	service.withDocument(ctx, func(live *liveDocument) {
		if err := fn(live.doc); err != nil {
			switch {
			case errors.Is(err, play.ErrExpanded):
				ctx.JSON(http.StatusConflict, NewErrorResponse(ErrDocumentExpanded))
			case errors.Is(err, play.ErrIndexOutOfRange):
				ctx.JSON(http.StatusBadRequest, NewErrorResponse(err))
			default:
				ctx.JSON(http.StatusInternalServerError, NewErrorResponse(err))
			}
			return
		}

		if err := service.saveDocument(ctx, live); err != nil {
			ctx.JSON(http.StatusInternalServerError, NewErrorResponse(err))
			return
		}

		ctx.JSON(http.StatusOK, createDocumentResponse(live))
	})
}

type SlideRequest struct {
	Window     *int `json:"window" binding:"required,gte=0"`
	Choice     *int `json:"choice" binding:"required"`
	DurationMS *int `json:"duration_ms" binding:"omitempty,gte=0,lte=60000"`
}

func (service *Service) slideWindow(ctx *gin.Context) {
	var req SlideRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(
			http.StatusBadRequest,
			NewErrorResponse(ErrInvalidParams, ExtractErrorFields(err)...),
		)
		return
	}

	dur := service.transition(req.DurationMS)

	service.mutateDocument(ctx, func(doc *play.Document) error {
		return doc.SlideWindow(*req.Window, *req.Choice, dur)
	})
}

type RandomiseRequest struct {
	// Windows is the subset of windows to randomise, all windows if omitted.
	Windows    []int `json:"windows" binding:"omitempty,dive,gte=0"`
	DurationMS *int  `json:"duration_ms" binding:"omitempty,gte=0,lte=60000"`
}

func (service *Service) randomise(ctx *gin.Context) {
	var req RandomiseRequest

	// the body is optional
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(
				http.StatusBadRequest,
				NewErrorResponse(ErrInvalidParams, ExtractErrorFields(err)...),
			)
			return
		}
	}

	dur := service.transition(req.DurationMS)

	service.mutateDocument(ctx, func(doc *play.Document) error {
		return doc.RandomiseAll(req.Windows, dur)
	})
}

func (service *Service) expand(ctx *gin.Context) {
	service.mutateDocument(ctx, func(doc *play.Document) error {
		doc.Expand()
		return nil
	})
}

func (service *Service) collapse(ctx *gin.Context) {
	service.mutateDocument(ctx, func(doc *play.Document) error {
		doc.Collapse()
		return nil
	})
}

// transition returns the requested duration or the configured default.
func (service *Service) transition(ms *int) time.Duration {
	if ms == nil {
		return service.config.DefaultTransition
	}
	return time.Duration(*ms) * time.Millisecond
}
