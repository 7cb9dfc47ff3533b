package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/streakscore/pkg/calendar"
)

func (s *Server) GetLeaderboard(c *gin.Context) {
	day, err := parseDayParam(c.Param("day"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	limit, err := parseOptionalInt(c.Query("limit"))
	if err != nil {
		AbortWithError(c, newValidationError("limit", "invalid_limit", "limit must be an integer"))
		return
	}
	n := 0
	if limit != nil {
		n = *limit
	}

	snapshot, err := s.leaderboardSvc.GetLeaderboard(c.Request.Context(), day, n)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": snapshot})
}

func (s *Server) ListBranchScores(c *gin.Context) {
	day, err := parseDayParam(c.Param("day"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	rows, err := s.branchSvc.ListBranchScores(c.Request.Context(), day)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows, "day": calendar.Format(day)})
}

func (s *Server) GetMember(c *gin.Context) {
	member, err := s.memberSvc.Get(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": member})
}

func (s *Server) GetDailyScore(c *gin.Context) {
	day, err := parseDayParam(c.Param("day"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	score, err := s.scoreSvc.GetDailyScore(c.Request.Context(), c.Param("user_id"), day)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": score})
}

// GetStreak reports the streak a score recorded on the given day would carry.
func (s *Server) GetStreak(c *gin.Context) {
	day, err := parseDayParam(c.Param("day"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	userID := strings.TrimSpace(c.Param("user_id"))
	streak, err := s.scoreSvc.ResolveStreak(c.Request.Context(), userID, day)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"user_id":        userID,
		"day":            calendar.Format(day),
		"current_streak": streak,
	}})
}

func (s *Server) GetDailySummary(c *gin.Context) {
	day, err := parseDayParam(c.Param("day"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	summary, err := s.summarySvc.GetDailySummary(c.Request.Context(), c.Param("user_id"), day)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": summary})
}

func (s *Server) ListEntries(c *gin.Context) {
	day, err := parseDayParam(c.Param("day"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	includeVoided, err := parseOptionalBool(c.Query("include_voided"))
	if err != nil {
		AbortWithError(c, newValidationError("include_voided", "invalid_include_voided", "include_voided must be a boolean"))
		return
	}

	entries, err := s.ledgerSvc.ListEntries(c.Request.Context(), c.Param("user_id"), day, includeVoided != nil && *includeVoided)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}
