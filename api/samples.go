package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type SampleResponse struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
}

type ListSamplesResponse struct {
	Samples []SampleResponse `json:"samples"`
}

func (service *Service) listSamples(ctx *gin.Context) {
	resp := ListSamplesResponse{
		Samples: make([]SampleResponse, 0, len(service.catalog.Samples)),
	}

	for _, s := range service.catalog.Samples {
		resp.Samples = append(resp.Samples, SampleResponse{
			Name:        s.Name,
			Title:       s.Title,
			Author:      s.Author,
			Description: s.Description,
		})
	}

	ctx.JSON(http.StatusOK, resp)
}

func (service *Service) createSampleDocument(ctx *gin.Context) {
	name := ctx.Param("name")

	sample, err := service.catalog.Get(name)
	if err != nil {
		field := ErrorField{"name", fmt.Sprintf("sample [%s] does not exist", name)}
		ctx.JSON(http.StatusNotFound, NewErrorResponse(ErrUnknownSample, field))
		return
	}

	service.startDocument(ctx, sample.Text, sample.Name)
}
