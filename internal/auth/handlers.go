package auth

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ParticipaSonora/PS-Backend/internal/db"
	"github.com/ParticipaSonora/PS-Backend/internal/httpx"
	"github.com/ParticipaSonora/PS-Backend/internal/logging"
	"github.com/ParticipaSonora/PS-Backend/internal/token"
	"github.com/ParticipaSonora/PS-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Rol         string `json:"rol"`
	IDUsuario   uint   `json:"id_usuario"`
}

func issueToken(w http.ResponseWriter, identifier, password string) {
	var user User
	err := db.DB.First(&user, "email = ?", strings.ToLower(strings.TrimSpace(identifier))).Error
	if err != nil {
		httpx.Error(w, http.StatusUnauthorized, "Credenciales inválidas")
		return
	}
	if !user.Activo {
		httpx.Error(w, http.StatusUnauthorized, "Usuario desactivado")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) != nil {
		httpx.Error(w, http.StatusUnauthorized, "Credenciales inválidas")
		return
	}

	signed, err := token.Default.Access(user.ID, user.Rol)
	if err != nil {
		logging.L().Errorw("signing access token", "err", err)
		httpx.Error(w, http.StatusInternalServerError, "Error interno")
		return
	}
	httpx.JSON(w, http.StatusOK, tokenResponse{
		AccessToken: signed,
		TokenType:   "bearer",
		Rol:         user.Rol,
		IDUsuario:   user.ID,
	})
}

// LoginHandler accepts {identificador, password} JSON.
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Identificador string `json:"identificador" validate:"required"`
		Password      string `json:"password" validate:"required"`
	}
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	issueToken(w, input.Identificador, input.Password)
}

// TokenHandler accepts form-encoded username/password, the shape mobile
// clients already speak.
func TokenHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, "formulario inválido")
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		httpx.Error(w, http.StatusUnprocessableEntity, "username y password son requeridos")
		return
	}
	issueToken(w, username, password)
}

func MeHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())
	var user User
	if err := db.DB.First(&user, "id = ?", p.ID).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Usuario no encontrado")
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())

	var users []User
	if err := db.DB.Scopes(UserScope(p)).Where("activo = ?", true).
		Order("id").Find(&users).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error de base de datos")
		return
	}
	httpx.JSON(w, http.StatusOK, users)
}

func GetUserHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}

	var user User
	if err := db.DB.Scopes(UserScope(p)).First(&user, "id = ?", id).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Usuario no encontrado")
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

type userInput struct {
	Nombre     string `json:"nombre" validate:"required"`
	Telefono   string `json:"telefono"`
	Direccion  string `json:"direccion"`
	Edad       *int   `json:"edad" validate:"omitempty,gte=18,lte=120"`
	Sexo       string `json:"sexo" validate:"omitempty,oneof=M F"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	Rol        string `json:"rol" validate:"required"`
	IDSuperior *uint  `json:"id_superior"`
}

func CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())
	if !CanWriteUsers(p) {
		httpx.Error(w, http.StatusForbidden, "Requiere rol admin")
		return
	}

	var input userInput
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if !utils.ValidRole(input.Rol) {
		httpx.Error(w, http.StatusUnprocessableEntity, "rol inválido")
		return
	}

	user, err := createUser(input)
	if err != nil {
		if errors.Is(err, errEmailTaken) {
			httpx.Error(w, http.StatusConflict, "El email ya está registrado")
			return
		}
		logging.L().Errorw("creating user", "err", err)
		httpx.Error(w, http.StatusInternalServerError, "Error al crear el usuario")
		return
	}
	httpx.JSON(w, http.StatusCreated, user)
}

var errEmailTaken = errors.New("email taken")

func createUser(input userInput) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	var existing User
	if err := db.DB.First(&existing, "email = ?", email).Error; err == nil {
		return nil, errEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := User{
		Nombre:         strings.TrimSpace(input.Nombre),
		Telefono:       input.Telefono,
		Direccion:      input.Direccion,
		Edad:           input.Edad,
		Sexo:           input.Sexo,
		Email:          email,
		HashedPassword: string(hashed),
		Rol:            input.Rol,
		IDSuperior:     input.IDSuperior,
		Activo:         true,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())
	if !CanWriteUsers(p) {
		httpx.Error(w, http.StatusForbidden, "Requiere rol admin")
		return
	}
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}

	var user User
	if err := db.DB.First(&user, "id = ?", id).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Usuario no encontrado")
		return
	}

	var input struct {
		Nombre     *string `json:"nombre"`
		Telefono   *string `json:"telefono"`
		Direccion  *string `json:"direccion"`
		Edad       *int    `json:"edad"`
		Sexo       *string `json:"sexo"`
		Rol        *string `json:"rol"`
		IDSuperior *uint   `json:"id_superior"`
		Activo     *bool   `json:"activo"`
	}
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if input.Nombre != nil {
		updates["nombre"] = *input.Nombre
	}
	if input.Telefono != nil {
		updates["telefono"] = *input.Telefono
	}
	if input.Direccion != nil {
		updates["direccion"] = *input.Direccion
	}
	if input.Edad != nil {
		updates["edad"] = *input.Edad
	}
	if input.Sexo != nil {
		updates["sexo"] = *input.Sexo
	}
	if input.Rol != nil {
		if !utils.ValidRole(*input.Rol) {
			httpx.Error(w, http.StatusUnprocessableEntity, "rol inválido")
			return
		}
		updates["rol"] = *input.Rol
	}
	if input.IDSuperior != nil {
		updates["id_superior"] = *input.IDSuperior
	}
	if input.Activo != nil {
		updates["activo"] = *input.Activo
	}

	if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error al actualizar")
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

// DeleteUserHandler soft-deactivates; hard deletion is not part of the core.
func DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())
	if !CanWriteUsers(p) {
		httpx.Error(w, http.StatusForbidden, "Requiere rol admin")
		return
	}
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}

	res := db.DB.Model(&User{}).Where("id = ?", id).Update("activo", false)
	if res.Error != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error al desactivar")
		return
	}
	if res.RowsAffected == 0 {
		httpx.Error(w, http.StatusNotFound, "Usuario no encontrado")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"detail": "Usuario desactivado"})
}

// SubordinatesHandler lists the subtree of a user, gated by the caller's own
// visibility.
func SubordinatesHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}

	if p.Role != utils.RoleAdmin && !inSubtree(p, uint(id)) {
		httpx.Error(w, http.StatusForbidden, "Fuera de tu estructura")
		return
	}

	ids := DescendantsDefault(uint(id))
	var users []User
	if err := db.DB.Where("id IN ? AND activo = ?", ids, true).Order("id").Find(&users).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error de base de datos")
		return
	}
	httpx.JSON(w, http.StatusOK, users)
}

// SetPasswordHandler lets an admin reset any user's password.
func SetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())
	if !CanWriteUsers(p) {
		httpx.Error(w, http.StatusForbidden, "Requiere rol admin")
		return
	}
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}

	var input struct {
		Password string `json:"password" validate:"required,min=8"`
	}
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var user User
	if err := db.DB.First(&user, "id = ?", id).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Usuario no encontrado")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error interno")
		return
	}
	if err := db.DB.Model(&user).Update("hashed_password", string(hashed)).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error al actualizar")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"detail": "Contraseña actualizada"})
}

// RegisterCiudadanoHandler is the public self-registration path; the new
// principal always lands with rol ciudadano and no superior.
func RegisterCiudadanoHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Nombre   string `json:"nombre" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
		Telefono string `json:"telefono"`
	}
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	user, err := createUser(userInput{
		Nombre:   input.Nombre,
		Email:    input.Email,
		Password: input.Password,
		Telefono: input.Telefono,
		Rol:      utils.RoleCiudadano,
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

// FindActiveUser is used by other modules to confirm a referenced principal
// exists and is active.
func FindActiveUser(conn *gorm.DB, id uint) (*User, error) {
	var user User
	if err := conn.First(&user, "id = ? AND activo = ?", id, true).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
