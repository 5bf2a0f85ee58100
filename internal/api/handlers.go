package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xaenox/kindred/internal/analyzer"
	"github.com/xaenox/kindred/internal/models"
	"github.com/xaenox/kindred/internal/service"
)

type analyzeRequest struct {
	Text string        `json:"text"`
	Kind analyzer.Kind `json:"kind" binding:"required"`
}

func (s *Server) analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	if !req.Kind.Valid() {
		badRequest(c, "kind must be one of safety, intent, consistency")
		return
	}
	ok(c, http.StatusOK, s.svc.AnalyzeText(req.Text, req.Kind))
}

type answerRequest struct {
	Answer   string `json:"answer"`
	Question string `json:"question"`
}

func (s *Server) scoreAnswer(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	ok(c, http.StatusOK, s.svc.ScoreAnswer(req.Answer))
}

func (s *Server) followUp(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	var followUp *string
	if q, found := s.svc.FollowUp(req.Answer, req.Question); found {
		followUp = &q
	}
	ok(c, http.StatusOK, gin.H{"follow_up": followUp})
}

// Users

func (s *Server) createUser(c *gin.Context) {
	user, err := s.svc.CreateUser(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, user)
}

func (s *Server) getMe(c *gin.Context) {
	user, err := s.svc.GetUser(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, user)
}

func (s *Server) setStatus(c *gin.Context) {
	var req struct {
		Status models.UserStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	user, err := s.svc.SetUserStatus(c.Request.Context(), userID(c), req.Status)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, user)
}

// Profiles

func (s *Server) createProfile(c *gin.Context) {
	var req service.CreateProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	p, err := s.svc.CreateProfile(c.Request.Context(), userID(c), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, p)
}

func (s *Server) getProfile(c *gin.Context) {
	p, err := s.svc.GetProfile(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

func (s *Server) getUserProfile(c *gin.Context) {
	p, err := s.svc.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

func (s *Server) updateProfile(c *gin.Context) {
	var req service.UpdateProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	p, err := s.svc.UpdateProfile(c.Request.Context(), userID(c), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

func (s *Server) getStrength(c *gin.Context) {
	strength, err := s.svc.GetStrength(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, strength)
}

func (s *Server) listPhotos(c *gin.Context) {
	photos, err := s.svc.ListPhotos(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, photos)
}

func (s *Server) addPhoto(c *gin.Context) {
	var req struct {
		URL    string `json:"url" binding:"required"`
		IsMain bool   `json:"is_main"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	photo, err := s.svc.AddPhoto(c.Request.Context(), userID(c), req.URL, req.IsMain)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, photo)
}

func (s *Server) deletePhoto(c *gin.Context) {
	if err := s.svc.DeletePhoto(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"deleted": true})
}

func (s *Server) listPrompts(c *gin.Context) {
	prompts, err := s.svc.ListPrompts(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, prompts)
}

func (s *Server) addPrompt(c *gin.Context) {
	var req struct {
		Question string `json:"question" binding:"required"`
		Answer   string `json:"answer" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	prompt, err := s.svc.AddPrompt(c.Request.Context(), userID(c), req.Question, req.Answer)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, prompt)
}

// Matching

func (s *Server) discover(c *gin.Context) {
	limit, err := intQuery(c, "limit")
	if err != nil {
		badRequest(c, "limit must be a number")
		return
	}
	candidates, err := s.svc.Discover(c.Request.Context(), userID(c), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, candidates)
}

func (s *Server) like(c *gin.Context) {
	res, err := s.svc.Like(c.Request.Context(), userID(c), c.Param("userId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}

func (s *Server) pass(c *gin.Context) {
	if err := s.svc.Pass(c.Request.Context(), userID(c), c.Param("userId")); err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"passed": true})
}

func (s *Server) listMatches(c *gin.Context) {
	matches, err := s.svc.ListMatches(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, matches)
}

func (s *Server) getMatch(c *gin.Context) {
	m, err := s.svc.GetMatch(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, m)
}

// Messages

func (s *Server) listMessages(c *gin.Context) {
	limit, err := intQuery(c, "limit")
	if err != nil {
		badRequest(c, "limit must be a number")
		return
	}
	var before *time.Time
	if raw := c.Query("before"); raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			badRequest(c, "before must be an RFC 3339 timestamp")
			return
		}
		before = &t
	}

	messages, err := s.svc.ListMessages(c.Request.Context(), userID(c), c.Param("id"), limit, before)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, messages)
}

func (s *Server) sendMessage(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	msg, err := s.svc.SendMessage(c.Request.Context(), userID(c), c.Param("id"), req.Content)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, msg)
}

func (s *Server) markRead(c *gin.Context) {
	n, err := s.svc.MarkRead(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"marked": n})
}

func (s *Server) unreadCount(c *gin.Context) {
	n, err := s.svc.UnreadCount(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"unread": n})
}

func (s *Server) scheduleDate(c *gin.Context) {
	var req struct {
		DateTime      time.Time `json:"date_time" binding:"required"`
		Location      string    `json:"location"`
		IsPublicPlace *bool     `json:"is_public_place"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	date, err := s.svc.ScheduleDate(c.Request.Context(), userID(c), c.Param("id"), req.DateTime, req.Location, req.IsPublicPlace)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, date)
}

// Trust and safety

func (s *Server) getTrust(c *gin.Context) {
	ts, err := s.svc.GetTrustScore(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, ts)
}

func (s *Server) getUserTrust(c *gin.Context) {
	if _, err := s.svc.GetUser(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	ts, err := s.svc.GetTrustScore(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, ts)
}

func (s *Server) report(c *gin.Context) {
	var req struct {
		ReportedUserID string            `json:"reported_user_id" binding:"required"`
		Type           models.ReportType `json:"type" binding:"required"`
		Description    string            `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	report, err := s.svc.Report(c.Request.Context(), userID(c), req.ReportedUserID, req.Type, req.Description)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, report)
}

func (s *Server) block(c *gin.Context) {
	var req struct {
		BlockedUserID string `json:"blocked_user_id" binding:"required"`
		Reason        string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := s.svc.Block(c.Request.Context(), userID(c), req.BlockedUserID, req.Reason); err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"blocked": true})
}

func (s *Server) getSafetySignals(c *gin.Context) {
	signals, err := s.svc.SafetySignals(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if signals == nil {
		signals = []models.SafetySignal{}
	}
	ok(c, http.StatusOK, signals)
}

func (s *Server) preDateCheck(c *gin.Context) {
	check, err := s.svc.PreDateCheck(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, check)
}

// Onboarding

func (s *Server) questions(c *gin.Context) {
	qs, err := s.svc.Questions(c.Request.Context(), models.QuestionCategory(c.Query("category")))
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, qs)
}

func (s *Server) progress(c *gin.Context) {
	p, err := s.svc.Progress(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

func (s *Server) submitAnswer(c *gin.Context) {
	var req struct {
		QuestionID string `json:"question_id" binding:"required"`
		Answer     string `json:"answer" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	res, err := s.svc.SubmitAnswer(c.Request.Context(), userID(c), req.QuestionID, req.Answer)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}

func (s *Server) completeOnboarding(c *gin.Context) {
	if err := s.svc.CompleteOnboarding(c.Request.Context(), userID(c)); err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"completed": true})
}

// intQuery reads an optional integer query parameter; absent means 0.
func intQuery(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
