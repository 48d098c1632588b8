package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/ParticipaSonora/PS-Backend/internal/httpx"
	"github.com/ParticipaSonora/PS-Backend/internal/token"
	"github.com/ParticipaSonora/PS-Backend/internal/utils"
)

// Invitations let a leader grow the structure without an admin in the loop:
// the token pins the role and the superior so the registrant cannot choose
// their own position in the tree.

const maxInviteTTL = 7 * 24 * time.Hour

func MintInviteHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())
	if p.Role != utils.RoleAdmin && !utils.IsLeader(p.Role) {
		httpx.Error(w, http.StatusForbidden, "Requiere rol admin o líder")
		return
	}

	var input struct {
		Rol          string `json:"rol" validate:"required"`
		HorasVigencia int   `json:"horas_vigencia" validate:"omitempty,gte=1"`
	}
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if !utils.ValidRole(input.Rol) || input.Rol == utils.RoleAdmin {
		httpx.Error(w, http.StatusUnprocessableEntity, "rol inválido para invitación")
		return
	}

	ttl := 48 * time.Hour
	if input.HorasVigencia > 0 {
		ttl = time.Duration(input.HorasVigencia) * time.Hour
		if ttl > maxInviteTTL {
			ttl = maxInviteTTL
		}
	}

	signed, err := token.Default.LeaderInvite(input.Rol, p.ID, ttl)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error al generar la invitación")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]interface{}{
		"token":       signed,
		"rol":         input.Rol,
		"id_superior": p.ID,
		"expira":      time.Now().Add(ttl).UTC(),
	})
}

// DecodeInviteHandler lets the registration UI show what the invite grants
// before asking for personal data.
func DecodeInviteHandler(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("token")
	if raw == "" {
		httpx.Error(w, http.StatusUnprocessableEntity, "token es requerido")
		return
	}
	claims, err := token.Default.Parse(raw, token.TypLeaderInvite)
	if err != nil {
		httpx.Error(w, http.StatusUnauthorized, "Invitación inválida o expirada")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]interface{}{
		"rol":         claims.InviteRole,
		"id_superior": claims.SuperiorID,
		"expira":      claims.ExpiresAt.Time,
	})
}

// RegisterWithInviteHandler creates the principal pinned to the invite's
// role and superior.
func RegisterWithInviteHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Token    string `json:"token" validate:"required"`
		Nombre   string `json:"nombre" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
		Telefono string `json:"telefono"`
	}
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	claims, err := token.Default.Parse(input.Token, token.TypLeaderInvite)
	if err != nil {
		httpx.Error(w, http.StatusUnauthorized, "Invitación inválida o expirada")
		return
	}

	superior := claims.SuperiorID
	user, err := createUser(userInput{
		Nombre:     input.Nombre,
		Email:      input.Email,
		Password:   input.Password,
		Telefono:   input.Telefono,
		Rol:        claims.InviteRole,
		IDSuperior: &superior,
	})
	if err != nil {
		if errors.Is(err, errEmailTaken) {
			httpx.Error(w, http.StatusConflict, "El email ya está registrado")
			return
		}
		httpx.Error(w, http.StatusInternalServerError, "Error al registrar")
		return
	}
	httpx.JSON(w, http.StatusCreated, user)
}
