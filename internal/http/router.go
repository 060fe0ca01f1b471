package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"log/slog"

	"github.com/inkwell/inkwell/internal/domain"
	"github.com/inkwell/inkwell/internal/repository"
	"github.com/inkwell/inkwell/internal/service/auth"
	"github.com/inkwell/inkwell/internal/service/blog"
)

const (
	healthCheckTimeout = 2 * time.Second
	oauthStateMaxAge   = 10 * time.Minute
)

// Router wires HTTP endpoints to services.
type Router struct {
	mux         *http.ServeMux
	logger      *slog.Logger
	auth        auth.Service
	blog        blog.Service
	google      auth.Exchanger
	frontendURL string
	stateSecret string
	dbHealth    func(context.Context) error
}

// NewRouter assembles routes with dependencies. google may be nil when
// no OAuth client is configured.
func NewRouter(logger *slog.Logger, authSvc auth.Service, blogSvc blog.Service, google auth.Exchanger, frontendURL, stateSecret string, dbHealth func(context.Context) error) *Router {
	r := &Router{
		mux:         http.NewServeMux(),
		logger:      logger,
		auth:        authSvc,
		blog:        blogSvc,
		google:      google,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		stateSecret: stateSecret,
		dbHealth:    dbHealth,
	}
	r.register()
	return r
}

// ServeHTTP delegates to underlying mux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) register() {
	r.mux.HandleFunc("/healthz", r.audit(r.handleHealthz))
	r.mux.HandleFunc("/auth/register", r.audit(r.cors(r.handleRegister)))
	r.mux.HandleFunc("/auth/login", r.audit(r.cors(r.handleLogin)))
	r.mux.HandleFunc("/auth/google", r.audit(r.handleGoogleLogin))
	r.mux.HandleFunc("/auth/google/callback", r.audit(r.handleGoogleCallback))
	r.mux.HandleFunc("/blog/", r.audit(r.cors(r.handleBlogSubroutes)))
}

// handleBlogSubroutes dispatches the /blog subtree:
//
//	GET    /blog/all            public
//	GET    /blog/{id}           public
//	POST   /blog/new-story      bearer
//	PUT    /blog/new-story/{id} bearer
//	DELETE /blog/new-story/{id} bearer
//	POST   /blog/{id}/comments  bearer
//	POST   /blog/{id}/like      bearer
func (r *Router) handleBlogSubroutes(w http.ResponseWriter, req *http.Request) {
	trimmed := strings.TrimPrefix(req.URL.Path, "/blog/")
	parts := strings.Split(trimmed, "/")
	switch {
	case trimmed == "all":
		r.handleBlogList(w, req)
	case trimmed == "new-story":
		r.requireAuth(r.handleBlogCreate)(w, req)
	case len(parts) == 2 && parts[0] == "new-story" && parts[1] != "":
		r.requireAuth(func(w http.ResponseWriter, req *http.Request) {
			r.handleBlogMutate(w, req, parts[1])
		})(w, req)
	case len(parts) == 2 && parts[1] == "comments" && parts[0] != "":
		r.requireAuth(func(w http.ResponseWriter, req *http.Request) {
			r.handleBlogComment(w, req, parts[0])
		})(w, req)
	case len(parts) == 2 && parts[1] == "like" && parts[0] != "":
		r.requireAuth(func(w http.ResponseWriter, req *http.Request) {
			r.handleBlogLike(w, req, parts[0])
		})(w, req)
	case len(parts) == 1 && parts[0] != "":
		r.handleBlogGet(w, req, parts[0])
	default:
		r.notFound(w)
	}
}

func (r *Router) handleRegister(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		Fullname string `json:"fullname"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, err := r.auth.Register(req.Context(), payload.Fullname, payload.Email, payload.Password)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	token, user, err := r.auth.Login(req.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": user})
}

func (r *Router) handleGoogleLogin(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	if r.google == nil {
		writeError(w, http.StatusServiceUnavailable, "oauth is not configured")
		return
	}
	state, err := auth.NewState(r.stateSecret)
	if err != nil {
		r.logger.Error("oauth state generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	http.Redirect(w, req, r.google.AuthURL(state), http.StatusFound)
}

// handleGoogleCallback finishes the provider flow. The caller is a
// browser navigation, so failures redirect to the frontend error page
// instead of returning JSON.
func (r *Router) handleGoogleCallback(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	failure := r.frontendURL + "/login?error=auth_failed"
	if r.google == nil {
		http.Redirect(w, req, failure, http.StatusFound)
		return
	}
	query := req.URL.Query()
	if err := auth.VerifyState(r.stateSecret, query.Get("state"), oauthStateMaxAge); err != nil {
		r.logger.Warn("oauth state rejected", "error", err)
		http.Redirect(w, req, failure, http.StatusFound)
		return
	}
	profile, err := r.google.Exchange(req.Context(), query.Get("code"))
	if err != nil {
		r.logger.Warn("oauth exchange failed", "error", err)
		http.Redirect(w, req, failure, http.StatusFound)
		return
	}
	token, err := r.auth.OAuthLogin(req.Context(), profile)
	if err != nil {
		r.logger.Error("oauth login failed", "error", err)
		http.Redirect(w, req, failure, http.StatusFound)
		return
	}
	http.Redirect(w, req, r.frontendURL+"/auth/callback?token="+url.QueryEscape(token), http.StatusFound)
}

func (r *Router) handleBlogCreate(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	info, ok := authInfoFromContext(req.Context())
	if !ok {
		r.logger.Error("auth context missing for post creation", "path", req.URL.Path)
		writeError(w, http.StatusInternalServerError, "authorization context missing")
		return
	}
	var payload struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	post, err := r.blog.Create(req.Context(), info.UserID, payload.Title, payload.Content)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Blog created successfully",
		"blog":    post,
	})
}

func (r *Router) handleBlogList(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	posts, err := r.blog.ListAll(req.Context())
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"blogs": posts})
}

func (r *Router) handleBlogGet(w http.ResponseWriter, req *http.Request, id string) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	post, err := r.blog.GetByID(req.Context(), id)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"blog": post})
}

func (r *Router) handleBlogMutate(w http.ResponseWriter, req *http.Request, id string) {
	info, ok := authInfoFromContext(req.Context())
	if !ok {
		r.logger.Error("auth context missing for post mutation", "path", req.URL.Path)
		writeError(w, http.StatusInternalServerError, "authorization context missing")
		return
	}
	switch req.Method {
	case http.MethodPut:
		var payload struct {
			Title   *string `json:"title"`
			Content *string `json:"content"`
		}
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		patch := domain.PostPatch{Title: payload.Title, Content: payload.Content}
		post, err := r.blog.Edit(req.Context(), id, info.UserID, patch)
		if err != nil {
			r.writeServiceError(w, req, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Blog updated successfully",
			"blog":    post,
		})
	case http.MethodDelete:
		if err := r.blog.Delete(req.Context(), id, info.UserID); err != nil {
			r.writeServiceError(w, req, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Blog deleted successfully"})
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleBlogComment(w http.ResponseWriter, req *http.Request, id string) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	info, ok := authInfoFromContext(req.Context())
	if !ok {
		r.logger.Error("auth context missing for comment", "path", req.URL.Path)
		writeError(w, http.StatusInternalServerError, "authorization context missing")
		return
	}
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	post, err := r.blog.AddComment(req.Context(), id, info.UserID, payload.Text)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Comment added successfully",
		"blog":    post,
	})
}

func (r *Router) handleBlogLike(w http.ResponseWriter, req *http.Request, id string) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	likes, err := r.blog.Like(req.Context(), id)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"likes": likes})
}

func (r *Router) handleHealthz(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	components := make(map[string]any)
	status := "ok"
	if r.dbHealth != nil {
		ctx, cancel := context.WithTimeout(req.Context(), healthCheckTimeout)
		defer cancel()
		if err := r.dbHealth(ctx); err != nil {
			status = "degraded"
			components["database"] = map[string]any{"status": "down", "error": err.Error()}
		} else {
			components["database"] = map[string]any{"status": "up"}
		}
	}
	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status":     status,
		"components": components,
		"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// writeServiceError maps service failures onto the error taxonomy. No
// internal detail leaks on unexpected errors.
func (r *Router) writeServiceError(w http.ResponseWriter, req *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrValidation), errors.Is(err, blog.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, "user already exists")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "incorrect credentials")
	case errors.Is(err, blog.ErrNotOwner):
		writeError(w, http.StatusForbidden, "you are not allowed to modify this post")
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "resource not found")
	default:
		r.logger.Error("request failed", "error", err, "method", req.Method, "path", req.URL.Path)
		writeError(w, http.StatusInternalServerError, "server error")
	}
}

// cors restricts cross-origin access to the configured frontend.
func (r *Router) cors(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		headers := w.Header()
		headers.Set("Access-Control-Allow-Origin", r.frontendURL)
		headers.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		headers.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		headers.Set("Access-Control-Allow-Credentials", "true")
		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, req)
	}
}

func (r *Router) audit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		next(recorder, req)

		status := recorder.status
		if status == 0 {
			status = http.StatusOK
		}
		ctx := recorder.ctx
		if ctx == nil {
			ctx = req.Context()
		}
		fields := []any{
			"method", req.Method,
			"path", req.URL.Path,
			"status", status,
			"bytes", recorder.bytes,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if ip := clientIP(req); ip != "" {
			fields = append(fields, "ip", ip)
		}
		actor := "anonymous"
		if info, ok := authInfoFromContext(ctx); ok {
			actor = "user"
			fields = append(fields, "user_id", info.UserID)
		}
		fields = append(fields, "actor", actor)

		switch {
		case status >= http.StatusInternalServerError:
			r.logger.Error("http_request", fields...)
		case status >= http.StatusBadRequest:
			r.logger.Warn("http_request", fields...)
		default:
			r.logger.Info("http_request", fields...)
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
	ctx    context.Context
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

func (sr *statusRecorder) SetContext(ctx context.Context) {
	sr.ctx = ctx
}

func clientIP(req *http.Request) string {
	if forwarded := strings.TrimSpace(req.Header.Get("X-Forwarded-For")); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(req.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(req.RemoteAddr)
	}
	return host
}

func (r *Router) methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func (r *Router) notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "resource not found")
}
