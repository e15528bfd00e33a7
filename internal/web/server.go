// Package web é o front end HTML do DealRadar: login, carrinho do usuário, painel do
// admin e os endpoints /health e /metrics.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"dealradar/internal/database"
	"dealradar/internal/monitor"
	logx "dealradar/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	cookieName    = "dealradar_session"
	sessionKey    = "session"
	sessionIDKey  = "session_id"
	defaultTTL    = 24 * time.Hour
	staleSession  = "Database was reset. Please login again."
	genericFailed = "Something went wrong. Please try again."
)

// Options configura o servidor web
type Options struct {
	// AdminEmail é o email com acesso ao painel de administração
	AdminEmail   string
	SessionTTL   time.Duration
	SecureCookie bool
}

// Server reúne as dependências dos handlers
type Server struct {
	db       *database.DB
	monitor  *monitor.Monitor
	sessions SessionStore
	opts     Options
}

// New cria o servidor. sessions nil usa MemoryStore.
func New(db *database.DB, mon *monitor.Monitor, sessions SessionStore, opts Options) *Server {
	if sessions == nil {
		sessions = NewMemoryStore()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = defaultTTL
	}
	opts.AdminEmail = strings.ToLower(strings.TrimSpace(opts.AdminEmail))
	return &Server{db: db, monitor: mon, sessions: sessions, opts: opts}
}

// Router monta as rotas
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), metricsMiddleware())
	r.SetHTMLTemplate(parseTemplates())

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	pages := r.Group("/", s.sessionMiddleware())
	{
		pages.GET("/", s.index)
		pages.GET("/login", s.loginPage)
		pages.POST("/login", s.login)
		pages.GET("/logout", s.logout)
		pages.GET("/signup", s.signupPage)
		pages.POST("/signup", s.signup)
	}

	user := pages.Group("/", s.requireLogin())
	{
		user.GET("/dashboard", s.dashboard)
		user.POST("/update_target", s.updateTarget)
		user.GET("/delete_cart/:cid", s.deleteCart)
		user.GET("/trigger_scrape", s.triggerScrape)
		user.POST("/user/create_product", s.createProduct)
	}

	admin := pages.Group("/admin", s.requireAdmin())
	{
		admin.GET("", s.adminPanel)
		admin.POST("/add_product", s.addProduct)
		admin.GET("/delete_product/:pid", s.deleteProduct)
	}
	return r
}

func parseTemplates() *template.Template {
	funcs := template.FuncMap{
		"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
		"date": func(t time.Time) string {
			if t.IsZero() {
				return "never"
			}
			return t.Format("2006-01-02 15:04")
		},
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html"))
}

func (s *Server) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var sess *Session
		id, err := c.Cookie(cookieName)
		if err == nil && id != "" {
			sess, err = s.sessions.Get(c.Request.Context(), id)
			if err != nil && err != ErrNoSession {
				logx.Error().Err(err).Msg("Erro ao carregar sessão")
			}
		}
		if sess == nil {
			id = uuid.NewString()
			sess = &Session{}
		}
		c.Set(sessionKey, sess)
		c.Set(sessionIDKey, id)
		c.Next()
	}
}

func (s *Server) requireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !currentSession(c).LoggedIn() {
			s.redirect(c, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := currentSession(c)
		if !sess.LoggedIn() {
			s.redirect(c, "/login")
			c.Abort()
			return
		}
		if !sess.IsAdmin {
			s.redirect(c, "/dashboard")
			c.Abort()
			return
		}
		c.Next()
	}
}

func currentSession(c *gin.Context) *Session {
	if v, ok := c.Get(sessionKey); ok {
		return v.(*Session)
	}
	return &Session{}
}

// commit grava a sessão e renova o cookie. Precisa ser chamado antes de escrever a resposta.
func (s *Server) commit(c *gin.Context) {
	id := c.GetString(sessionIDKey)
	if id == "" {
		return
	}
	sess := currentSession(c)
	if !sess.LoggedIn() && len(sess.Flashes) == 0 {
		// Visitante anônimo sem sessão gravada: nada a guardar
		if _, err := c.Cookie(cookieName); err != nil {
			return
		}
	}
	if err := s.sessions.Save(c.Request.Context(), id, sess, s.opts.SessionTTL); err != nil {
		logx.Error().Err(err).Msg("Erro ao gravar sessão")
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookieName, id, int(s.opts.SessionTTL.Seconds()), "/", "", s.opts.SecureCookie, true)
}

func (s *Server) redirect(c *gin.Context, location string) {
	s.commit(c)
	c.Redirect(http.StatusFound, location)
}

func (s *Server) render(c *gin.Context, name string, data gin.H) {
	sess := currentSession(c)
	if data == nil {
		data = gin.H{}
	}
	data["Flashes"] = sess.popFlashes()
	data["Session"] = sess
	s.commit(c)
	c.HTML(http.StatusOK, name, data)
}

// storeError trata erros do banco nos handlers. Uma sessão que aponta para um usuário
// removido (banco reiniciado) é encerrada e o usuário volta para o login.
func (s *Server) storeError(c *gin.Context, err error) {
	if isStaleUser(err) {
		sess := currentSession(c)
		logx.Warn().Int64("user_id", sess.UserID).Msg("Sessão aponta para usuário inexistente")
		sess.Clear()
		sess.AddFlash("warning", staleSession)
		s.redirect(c, "/login")
		return
	}
	logx.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Erro no banco")
	c.String(http.StatusInternalServerError, genericFailed)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logx.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("Requisição")
	}
}
