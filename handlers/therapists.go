package handlers

import (
	"net/http"

	"mindease/models"
	"mindease/services/backend"
	"mindease/services/listing"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// TherapistHandler serves the therapist directory.
type TherapistHandler struct {
	API    backend.API
	Browse listing.BrowseStore
}

func NewTherapistHandler(api backend.API, browse listing.BrowseStore) *TherapistHandler {
	return &TherapistHandler{API: api, Browse: browse}
}

type therapistListResponse struct {
	Query       listing.TherapistQuery                `json:"query"`
	Specialties []string                              `json:"specialties"`
	Therapists  listing.Page[models.TherapistProfile] `json:"therapists"`
}

// List handles GET /api/therapists. Without query parameters the session's
// last search, filters, sort and page are restored.
func (h *TherapistHandler) List(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	logger := getLogger(c)

	state, err := h.Browse.Load(ctx, sess.ID)
	if err != nil {
		logger.Warn("could not load browse state", zap.Error(err))
	}
	if len(c.Request.URL.Query()) > 0 {
		state = state.Apply(listing.TherapistQuery{
			Search:      c.Query("search"),
			Specialties: c.QueryArray("specialty"),
			Sort:        listing.SortKey(c.Query("sort")),
		}, cast.ToInt(c.Query("page")))
	} else {
		state = state.Apply(state.Query, state.Page)
	}

	res := h.API.GetTherapists(ctx, sess)
	if err := backend.Err(res); err != nil {
		respondError(c, err)
		return
	}
	page := listing.BrowseTherapists(res.Data, state.Query, state.Page)
	state.Page = page.Page
	if err := h.Browse.Save(ctx, sess.ID, state); err != nil {
		logger.Warn("could not save browse state", zap.Error(err))
	}

	c.JSON(http.StatusOK, therapistListResponse{
		Query:       state.Query,
		Specialties: listing.AllSpecialties(res.Data),
		Therapists:  page,
	})
}

// Get handles GET /api/therapists/:id.
func (h *TherapistHandler) Get(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	res := h.API.GetTherapistInformation(c.Request.Context(), sess, models.ID(c.Param("id")))
	if err := backend.Err(res); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res.Data)
}
