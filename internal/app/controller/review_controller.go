package controller

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/ikkim/juveboxd-backend/internal/app/model"
	"github.com/ikkim/juveboxd-backend/internal/app/service"
	"github.com/ikkim/juveboxd-backend/internal/errors"
	"github.com/ikkim/juveboxd-backend/internal/export"
	"github.com/ikkim/juveboxd-backend/internal/middleware"
	ws "github.com/ikkim/juveboxd-backend/internal/websocket"
)

const exportFilename = "juveboxd-reviews.xlsx"

type ReviewController struct {
	reviewService *service.ReviewService
	hub           *ws.Hub
	upgrader      websocket.Upgrader
}

// NewReviewController builds the review handlers. hub may be nil, in which case
// the live feed route answers 503.
func NewReviewController(reviewService *service.ReviewService, hub *ws.Hub, allowedOrigins []string) *ReviewController {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}

	return &ReviewController{
		reviewService: reviewService,
		hub:           hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins["*"] || origins[origin]
			},
		},
	}
}

type CreateReviewRequest struct {
	Nickname string  `json:"nickname"`
	Rating   float64 `json:"rating"`
	Comment  string  `json:"comment"`
}

// ListReviews returns every review, newest first
// GET /api/reviews?limit=6
func (ctrl *ReviewController) ListReviews(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			errors.BadRequest(c, errors.ValidationInvalidInput, "Parâmetro limit inválido")
			return
		}
		limit = n
	}

	reviews, err := ctrl.reviewService.List(c.Request.Context())
	if err != nil {
		log.Error("Failed to fetch reviews", err, nil)
		errors.ParseAndRespond(c, err)
		return
	}
	if limit > 0 && len(reviews) > limit {
		reviews = reviews[:limit]
	}

	c.JSON(http.StatusOK, reviews)
}

// RecentReviews 캐러셀용 최신 리뷰. 저장소 오류 시 빈 목록 반환
// GET /api/reviews/recent?limit=6
func (ctrl *ReviewController) RecentReviews(c *gin.Context) {
	limit := service.CarouselSize
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			errors.BadRequest(c, errors.ValidationInvalidInput, "Parâmetro limit inválido")
			return
		}
		limit = n
	}

	c.JSON(http.StatusOK, ctrl.reviewService.Recent(c.Request.Context(), limit))
}

// CreateReview 리뷰 등록
// POST /api/reviews
func (ctrl *ReviewController) CreateReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid review request", map[string]interface{}{
			"error": err.Error(),
		})
		errors.BadRequest(c, errors.ValidationInvalidInput, "Dados do review inválidos")
		return
	}

	review, err := ctrl.reviewService.Submit(c.Request.Context(), model.ReviewDraft{
		Nickname: req.Nickname,
		Rating:   req.Rating,
		Comment:  req.Comment,
	})
	if err != nil {
		if !service.IsValidationError(err) {
			log.Error("Failed to create review", err, nil)
		}
		errors.ParseAndRespond(c, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

// GetReview 리뷰 단건 조회
// GET /api/reviews/:id
func (ctrl *ReviewController) GetReview(c *gin.Context) {
	review, err := ctrl.reviewService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		errors.ParseAndRespond(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// DeleteReview 리뷰 삭제 (없는 ID도 204)
// DELETE /api/reviews/:id
func (ctrl *ReviewController) DeleteReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id := c.Param("id")
	if err := ctrl.reviewService.Delete(c.Request.Context(), id); err != nil {
		log.Error("Failed to delete review", err, map[string]interface{}{
			"review_id": id,
		})
		errors.ParseAndRespond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetSummary returns review count and average rating
// GET /api/reviews/summary
func (ctrl *ReviewController) GetSummary(c *gin.Context) {
	summary, err := ctrl.reviewService.Summary(c.Request.Context())
	if err != nil {
		errors.ParseAndRespond(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ExportReviews downloads every review as a spreadsheet
// GET /api/reviews/export.xlsx
func (ctrl *ReviewController) ExportReviews(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	reviews, err := ctrl.reviewService.List(c.Request.Context())
	if err != nil {
		errors.ParseAndRespond(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, reviews); err != nil {
		log.Error("Failed to build review workbook", err, nil)
		errors.InternalError(c, "")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

// LiveFeed upgrades to a websocket that receives review events
// GET /api/reviews/live
func (ctrl *ReviewController) LiveFeed(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if ctrl.hub == nil {
		errors.RespondWithError(c, http.StatusServiceUnavailable, errors.InternalServerError, "Feed ao vivo indisponível")
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err)
		return
	}

	client := ws.NewClient(ctrl.hub, &ws.Conn{Conn: conn})
	ctrl.hub.Register(client)

	// goroutine으로 읽기/쓰기 시작
	go client.WritePump()
	go client.ReadPump()

	log.Info("Live feed connection established", map[string]interface{}{
		"client_id": client.ID,
	})
}
