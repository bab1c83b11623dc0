package httpserver

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	appcases "github.com/IvanGD/engine-diagnostic-site/internal/application/cases"
	appusers "github.com/IvanGD/engine-diagnostic-site/internal/application/users"
	domcases "github.com/IvanGD/engine-diagnostic-site/internal/domain/cases"
	domusers "github.com/IvanGD/engine-diagnostic-site/internal/domain/users"
	"github.com/IvanGD/engine-diagnostic-site/internal/middleware"
)

const maxUploadBytes = 10 << 20 // multipart memory budget per submission

type Router struct {
	cases *appcases.Service
	users *appusers.Service
}

func NewRouter(casesSvc *appcases.Service, usersSvc *appusers.Service, sessions middleware.TokenResolver) http.Handler {
	r := &Router{cases: casesSvc, users: usersSvc}
	mux := chi.NewRouter()

	mux.Route("/v1", func(rt chi.Router) {
		rt.Post("/auth/register", r.wrap(r.handleRegister))
		rt.Post("/auth/login", r.wrap(r.handleLogin))

		rt.Group(func(g chi.Router) {
			g.Use(middleware.SessionAuth(sessions))
			g.Post("/auth/logout", r.wrap(r.handleLogout))
			g.Post("/cases", r.wrap(r.handleSubmitCase))
			g.Get("/cases", r.wrap(r.handleListCases))
			g.Get("/cases/{id}", r.wrap(r.handleGetCase))
		})
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			var cve *domcases.ValidationError
			var uve *domusers.ValidationError
			switch {
			case errors.As(err, &cve) || errors.As(err, &uve):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, domusers.ErrInvalidCredentials):
				http.Error(w, "invalid username or password", http.StatusUnauthorized)
			case errors.Is(err, domcases.ErrNotFound):
				http.Error(w, "case not found", http.StatusNotFound)
			case errors.Is(err, domusers.ErrUsernameTaken):
				http.Error(w, "username already taken", http.StatusConflict)
			default:
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		}
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// POST /v1/auth/register
func (r *Router) handleRegister(w http.ResponseWriter, req *http.Request) error {
	var body credentialsRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return &domusers.ValidationError{Field: "body", Reason: "invalid JSON"}
	}
	if err := middleware.ValidateUsername(strings.TrimSpace(body.Username)); err != nil {
		return &domusers.ValidationError{Field: "username", Reason: err.Error()}
	}

	u, err := r.users.Register(req.Context(), body.Username, body.Password)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	return json.NewEncoder(w).Encode(u)
}

// POST /v1/auth/login
func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) error {
	var body credentialsRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return &domusers.ValidationError{Field: "body", Reason: "invalid JSON"}
	}

	token, err := r.users.Login(req.Context(), body.Username, body.Password)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]string{"token": token})
}

// POST /v1/auth/logout
func (r *Router) handleLogout(w http.ResponseWriter, req *http.Request) error {
	token := strings.TrimSpace(strings.TrimPrefix(req.Header.Get("Authorization"), "Bearer "))
	r.users.Logout(token)
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// POST /v1/cases
// Accepts multipart/form-data (engine_type, symptoms, image?) from the web
// form, or JSON {engine_type, symptoms, image_ref?} from API clients.
func (r *Router) handleSubmitCase(w http.ResponseWriter, req *http.Request) error {
	ownerID := middleware.OwnerFromContext(req.Context())

	cmd := appcases.SubmitCaseCommand{OwnerID: ownerID}

	mediaType, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := req.ParseMultipartForm(maxUploadBytes); err != nil {
			return &domcases.ValidationError{Field: "body", Reason: "invalid multipart form"}
		}
		cmd.EngineType = middleware.SanitizeString(req.FormValue("engine_type"))
		cmd.Symptoms = middleware.SanitizeString(req.FormValue("symptoms"))

		file, header, err := req.FormFile("image")
		if err == nil {
			defer file.Close()
			ref, uerr := r.cases.UploadImage(req.Context(), ownerID, header.Filename, file, header.Size)
			if uerr != nil {
				return uerr
			}
			middleware.IncrementImages()
			cmd.ImageRef = ref
		} else if err != http.ErrMissingFile {
			return &domcases.ValidationError{Field: "image", Reason: "unreadable upload"}
		}
	} else {
		var body struct {
			EngineType string `json:"engine_type"`
			Symptoms   string `json:"symptoms"`
			ImageRef   string `json:"image_ref"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			return &domcases.ValidationError{Field: "body", Reason: "invalid JSON"}
		}
		cmd.EngineType = middleware.SanitizeString(body.EngineType)
		cmd.Symptoms = middleware.SanitizeString(body.Symptoms)
		cmd.ImageRef = body.ImageRef
	}

	if err := middleware.ValidateSymptomsLength(cmd.Symptoms); err != nil {
		return &domcases.ValidationError{Field: "symptoms", Reason: err.Error()}
	}

	c, err := r.cases.SubmitCase(req.Context(), cmd)
	if err != nil {
		return err
	}
	middleware.IncrementCases()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	return json.NewEncoder(w).Encode(c)
}

// GET /v1/cases
func (r *Router) handleListCases(w http.ResponseWriter, req *http.Request) error {
	ownerID := middleware.OwnerFromContext(req.Context())

	list, err := r.cases.ListCases(req.Context(), ownerID)
	if err != nil {
		return err
	}
	if list == nil {
		list = []*domcases.Case{}
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/cases/{id}
func (r *Router) handleGetCase(w http.ResponseWriter, req *http.Request) error {
	ownerID := middleware.OwnerFromContext(req.Context())

	id, err := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
	if err != nil {
		// Malformed ids look the same as missing ones.
		return domcases.ErrNotFound
	}

	c, err := r.cases.GetCase(req.Context(), domcases.CaseID(id), ownerID)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(c)
}
