package geo

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aryanracha/civiclens/internal/pkg/geoutil"
	"github.com/aryanracha/civiclens/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// MapData godoc
// @Summary GeoJSON map layer of issues and official records
// @Tags geo
// @Produce json
// @Param category query string false "Filter issues by category"
// @Param status query string false "Filter issues by status"
// @Param lat query number false "Map center latitude"
// @Param lng query number false "Map center longitude"
// @Param radiusKm query number false "Radius around the center, default 25"
// @Success 200 {object} FeatureCollection
// @Router /geo/map [get]
func (h *Handler) MapData(c *gin.Context) {
	q := MapQuery{
		Category: c.Query("category"),
		Status:   c.Query("status"),
	}

	if latStr, lngStr := c.Query("lat"), c.Query("lng"); latStr != "" && lngStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lng, lngErr := strconv.ParseFloat(lngStr, 64)
		if latErr != nil || lngErr != nil {
			response.BadRequest(c, "Invalid map center coordinates")
			return
		}
		center := geoutil.NewPoint(lat, lng)
		q.Center = &center

		if radiusStr := c.Query("radiusKm"); radiusStr != "" {
			radius, err := strconv.ParseFloat(radiusStr, 64)
			if err != nil || radius <= 0 {
				response.BadRequest(c, "Invalid radius")
				return
			}
			q.RadiusKm = radius
		}
	}

	collection, err := h.svc.MapData(c.Request.Context(), q)
	if err != nil {
		response.DatabaseError(c, "Failed to build map data")
		return
	}
	c.JSON(200, collection)
}

// Nearby godoc
// @Summary Issues and records within 3km of a point
// @Tags geo
// @Produce json
// @Param lat query number true "Latitude"
// @Param lng query number true "Longitude"
// @Success 200 {object} FeatureCollection
// @Router /geo/nearby [get]
func (h *Handler) Nearby(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lngErr != nil {
		response.BadRequest(c, "lat and lng query parameters are required")
		return
	}

	collection, err := h.svc.Nearby(c.Request.Context(), lat, lng)
	if err != nil {
		response.DatabaseError(c, "Failed to fetch nearby features")
		return
	}
	c.JSON(200, collection)
}
