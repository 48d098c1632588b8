package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/ParticipaSonora/PS-Backend/internal/db"
	"github.com/ParticipaSonora/PS-Backend/internal/token"
	"github.com/ParticipaSonora/PS-Backend/internal/utils"
	"golang.org/x/time/rate"
)

var allowed = map[string]struct{}{
	"http://localhost:5173":                 {},
	"http://localhost:8100":                 {},
	"https://app.participasonora.mx":        {},
	"https://admin.participasonora.mx":      {},
	"https://ps-backend.participasonora.mx": {},
}

func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		// Echo the origin back only if it's on our allow-list
		if _, ok := allowed[origin]; ok {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods",
				"GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers",
				"Content-Type, Authorization")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// user is a narrow read of the usuarios table; just enough to confirm the
// subject still exists and is active without importing the auth package.
type user struct {
	ID     uint `gorm:"primaryKey"`
	Rol    string
	Activo bool
}

func (user) TableName() string { return "app_auth.usuarios" }

// Auth verifies the Bearer token, confirms the subject is still active and
// attaches the principal to the request context.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, "Missing bearer token", http.StatusUnauthorized)
			return
		}

		claims, err := token.Default.Parse(strings.TrimPrefix(header, "Bearer "), token.TypAccess)
		if err != nil {
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}
		id, err := claims.SubjectID()
		if err != nil {
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		var u user
		if err := db.DB.First(&u, "id = ?", id).Error; err != nil {
			http.Error(w, "Unknown user", http.StatusUnauthorized)
			return
		}
		if !u.Activo {
			http.Error(w, "User is deactivated", http.StatusUnauthorized)
			return
		}

		ctx := utils.WithPrincipal(r.Context(), utils.Principal{ID: u.ID, Role: u.Rol})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles allows only principals holding one of the given roles.
// Mount after Auth.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		set[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := utils.GetPrincipal(r.Context())
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if _, ok := set[p.Role]; !ok {
				http.Error(w, "Forbidden: insufficient role", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireLeader allows admin plus any hierarchy role (presidente, lider_*).
func RequireLeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := utils.GetPrincipal(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if p.Role != utils.RoleAdmin && !utils.IsLeader(p.Role) {
			http.Error(w, "Forbidden: leader role required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimit throttles by client IP. Used on the public submission and login
// endpoints, which are reachable without a token.
func RateLimit(rps rate.Limit, burst int) func(http.Handler) http.Handler {
	var (
		mu       sync.Mutex
		limiters = map[string]*rate.Limiter{}
	)
	limiterFor := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[ip]
		if !ok {
			l = rate.NewLimiter(rps, burst)
			limiters[ip] = l
		}
		return l
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			if !limiterFor(ip).Allow() {
				w.Header().Set("Retry-After", "1")
				http.Error(w, "Too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
