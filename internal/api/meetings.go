package api

import (
	"net/http"
	"time"

	"kaban_bot/internal/middleware"
	"kaban_bot/internal/model"
	"kaban_bot/internal/service"
	"kaban_bot/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type meetingRoutes struct {
	ms service.MeetingServiceI
	us service.UserServiceI
}

// NewMeetingRoutes registers the read-only mini-app endpoints. guards run
// before every handler and must put the registered user into the context.
func NewMeetingRoutes(handler *gin.RouterGroup, ms service.MeetingServiceI, us service.UserServiceI, guards ...gin.HandlerFunc) {
	r := &meetingRoutes{ms: ms, us: us}
	h := handler.Group("")
	h.Use(guards...)
	{
		h.GET("/meetings", r.ListActiveMeetings)
		h.GET("/stats", r.GetStats)
	}
}

type MeetingResponse struct {
	ID           int64     `json:"id"`
	Time         string    `json:"time"`
	Description  string    `json:"description"`
	CreatedBy    int64     `json:"created_by"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	Participants []string  `json:"participants"`
	Decliners    []string  `json:"decliners"`
}

type StatsResponse struct {
	TelegramID        int64   `json:"telegram_id"`
	Handle            string  `json:"handle"`
	TotalVotes        int     `json:"total_votes"`
	PositiveVotes     int     `json:"positive_votes"`
	NegativeVotes     int     `json:"negative_votes"`
	ParticipationRate float64 `json:"participation_rate"`
}

func handles(votes []*model.Vote) []string {
	out := make([]string, len(votes))
	for i, v := range votes {
		out[i] = v.DisplayHandle()
	}
	return out
}

func (r *meetingRoutes) ListActiveMeetings(c *gin.Context) {
	log := logger.Logger()

	meetings, err := r.ms.ListActiveMeetings(c.Request.Context())
	if err != nil {
		log.Error("failed to list active meetings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	response := make([]MeetingResponse, len(meetings))
	for i, m := range meetings {
		participants, decliners := m.Tally()
		response[i] = MeetingResponse{
			ID:           m.ID,
			Time:         m.Time,
			Description:  m.Description,
			CreatedBy:    m.CreatedBy,
			Status:       string(m.Status),
			CreatedAt:    m.CreatedAt,
			Participants: handles(participants),
			Decliners:    handles(decliners),
		}
	}

	c.JSON(http.StatusOK, response)
}

func (r *meetingRoutes) GetStats(c *gin.Context) {
	log := logger.Logger()

	user, ok := c.MustGet(middleware.UserContextKey).(*model.User)
	if !ok {
		log.Error("invalid type assertion for user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	stats, err := r.us.GetUserStats(c.Request.Context(), user.TelegramID)
	if err != nil {
		log.Error("failed to get user stats", zap.Error(err), zap.Int64("telegram_id", user.TelegramID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, StatsResponse{
		TelegramID:        user.TelegramID,
		Handle:            user.DisplayHandle(),
		TotalVotes:        stats.TotalVotes,
		PositiveVotes:     stats.PositiveVotes,
		NegativeVotes:     stats.NegativeVotes,
		ParticipationRate: stats.ParticipationRate,
	})
}
