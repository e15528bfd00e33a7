package web

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"dealradar/internal/database"
	"dealradar/internal/deals"
	"dealradar/internal/models"
	"dealradar/internal/monitor"
	"dealradar/internal/sanitize"
	logx "dealradar/pkg/logger"

	"github.com/gin-gonic/gin"
)

func isStaleUser(err error) bool {
	return errors.Is(err, database.ErrUnknownUser)
}

func (s *Server) health(c *gin.Context) {
	if err := s.db.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "dealradar"})
}

func (s *Server) index(c *gin.Context) {
	if currentSession(c).LoggedIn() {
		s.redirect(c, "/dashboard")
		return
	}
	s.redirect(c, "/login")
}

func (s *Server) loginPage(c *gin.Context) {
	s.render(c, "login.html", nil)
}

func (s *Server) login(c *gin.Context) {
	sess := currentSession(c)
	u, err := s.db.Authenticate(c.Request.Context(), c.PostForm("email"), c.PostForm("password"))
	if errors.Is(err, database.ErrInvalidCredentials) {
		sess.AddFlash("danger", "User not found!")
		s.redirect(c, "/login")
		return
	}
	if err != nil {
		s.storeError(c, err)
		return
	}

	sess.UserID = u.ID
	sess.Email = u.Email
	sess.IsAdmin = s.opts.AdminEmail != "" && u.Email == s.opts.AdminEmail
	logx.Info().Int64("user_id", u.ID).Bool("admin", sess.IsAdmin).Msg("Login")
	s.redirect(c, "/dashboard")
}

func (s *Server) logout(c *gin.Context) {
	currentSession(c).Clear()
	s.redirect(c, "/login")
}

func (s *Server) signupPage(c *gin.Context) {
	s.render(c, "signup.html", nil)
}

func (s *Server) signup(c *gin.Context) {
	sess := currentSession(c)
	fname := strings.TrimSpace(c.PostForm("fname"))
	lname := strings.TrimSpace(c.PostForm("lname"))
	email := c.PostForm("email")
	password := c.PostForm("password")
	if fname == "" || strings.TrimSpace(email) == "" || password == "" {
		sess.AddFlash("danger", "Name, email and password are required.")
		s.redirect(c, "/signup")
		return
	}

	_, err := s.db.CreateUser(c.Request.Context(), fname, lname, email, password)
	if errors.Is(err, database.ErrDuplicateEmail) {
		sess.AddFlash("danger", "Email exists.")
		s.redirect(c, "/signup")
		return
	}
	if err != nil {
		s.storeError(c, err)
		return
	}
	sess.AddFlash("success", "Account created! Please login.")
	s.redirect(c, "/login")
}

func (s *Server) dashboard(c *gin.Context) {
	sess := currentSession(c)
	if sess.IsAdmin {
		s.redirect(c, "/admin")
		return
	}
	ctx := c.Request.Context()

	items, err := s.db.Watchlist(ctx, sess.UserID)
	if err != nil {
		s.storeError(c, err)
		return
	}
	history, err := s.db.AlertHistory(ctx, sess.UserID, 30)
	if err != nil {
		s.storeError(c, err)
		return
	}
	news, err := s.db.RelevantNews(ctx, sess.UserID, 5)
	if err != nil {
		s.storeError(c, err)
		return
	}

	s.render(c, "dashboard.html", gin.H{
		"Board":   deals.Classify(items),
		"History": history,
		"News":    news,
	})
}

func (s *Server) updateTarget(c *gin.Context) {
	sess := currentSession(c)
	cid, err := strconv.ParseInt(c.PostForm("cid"), 10, 64)
	if err != nil {
		sess.AddFlash("danger", "Invalid item.")
		s.redirect(c, "/dashboard")
		return
	}
	cutoff, ok := parseAmount(c.PostForm("new_cutoff"))
	if !ok {
		sess.AddFlash("danger", "Invalid target price.")
		s.redirect(c, "/dashboard")
		return
	}

	alerted, err := s.db.UpdateTarget(c.Request.Context(), sess.UserID, cid, cutoff)
	switch {
	case errors.Is(err, database.ErrNotFound):
		sess.AddFlash("danger", "Item not found.")
	case err != nil:
		s.storeError(c, err)
		return
	case alerted:
		sess.AddFlash("success", "Deal detected!")
	default:
		sess.AddFlash("success", "Target updated.")
	}
	s.redirect(c, "/dashboard")
}

func (s *Server) deleteCart(c *gin.Context) {
	sess := currentSession(c)
	cid, err := strconv.ParseInt(c.Param("cid"), 10, 64)
	if err != nil {
		s.redirect(c, "/dashboard")
		return
	}
	if err := s.db.DeleteFromCart(c.Request.Context(), sess.UserID, cid); err != nil && !errors.Is(err, database.ErrNotFound) {
		s.storeError(c, err)
		return
	}
	s.redirect(c, "/dashboard")
}

func (s *Server) triggerScrape(c *gin.Context) {
	sess := currentSession(c)
	summary, err := s.monitor.ScanAll(c.Request.Context())
	if err != nil {
		logx.Error().Err(err).Msg("Erro na varredura")
		sess.AddFlash("danger", "Scan failed: "+err.Error())
		s.redirect(c, "/dashboard")
		return
	}
	sess.AddFlash("info", summary.Message())
	s.redirect(c, "/dashboard")
}

func (s *Server) createProduct(c *gin.Context) {
	sess := currentSession(c)
	link := strings.TrimSpace(c.PostForm("pname_or_link"))
	if link == "" {
		sess.AddFlash("danger", "Paste a product link.")
		s.redirect(c, "/dashboard")
		return
	}

	d, err := s.monitor.Discover(c.Request.Context(), sess.UserID, link)
	switch {
	case errors.Is(err, monitor.ErrDiscoveryFailed):
		sess.AddFlash("danger", "Could not read product link. Ensure it is a product page.")
	case err != nil:
		s.storeError(c, err)
		return
	default:
		sess.AddFlash("success", fmt.Sprintf("Added '%s...'", sanitize.Truncate(d.Name, 20)))
	}
	s.redirect(c, "/dashboard")
}

func (s *Server) adminPanel(c *gin.Context) {
	ctx := c.Request.Context()
	products, err := s.db.ListProducts(ctx)
	if err != nil {
		s.storeError(c, err)
		return
	}
	users, err := s.db.ListUserEmails(ctx)
	if err != nil {
		s.storeError(c, err)
		return
	}
	alerts, err := s.db.RecentAlerts(ctx, 20)
	if err != nil {
		s.storeError(c, err)
		return
	}
	s.render(c, "admin.html", gin.H{
		"Products": products,
		"Users":    users,
		"Alerts":   alerts,
	})
}

func (s *Server) addProduct(c *gin.Context) {
	sess := currentSession(c)
	msrp, ok := parseAmount(c.DefaultPostForm("msrp", "0"))
	if !ok {
		sess.AddFlash("danger", "Invalid MSRP.")
		s.redirect(c, "/admin")
		return
	}

	_, err := s.db.CreateProduct(c.Request.Context(), models.Product{
		Name:        sanitize.ASCII(c.PostForm("pname")),
		Description: sanitize.ASCII(c.PostForm("description")),
		Category:    sanitize.ASCII(c.PostForm("category")),
		MSRP:        msrp,
	})
	if err != nil {
		logx.Warn().Err(err).Msg("Erro ao criar produto")
		sess.AddFlash("danger", "Could not create product.")
	} else {
		sess.AddFlash("success", "Product created.")
	}
	s.redirect(c, "/admin")
}

func (s *Server) deleteProduct(c *gin.Context) {
	pid, err := strconv.ParseInt(c.Param("pid"), 10, 64)
	if err != nil {
		s.redirect(c, "/admin")
		return
	}
	if err := s.db.DeleteProduct(c.Request.Context(), pid); err != nil && !errors.Is(err, database.ErrNotFound) {
		s.storeError(c, err)
		return
	}
	s.redirect(c, "/admin")
}

// parseAmount lê um valor em dinheiro do formulário. Aceita apenas números finitos >= 0.
func parseAmount(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}
