package noticias

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ParticipaSonora/PS-Backend/internal/auth"
	"github.com/ParticipaSonora/PS-Backend/internal/db"
	"github.com/ParticipaSonora/PS-Backend/internal/httpx"
	"github.com/ParticipaSonora/PS-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

func newsID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	return uint(id), err == nil
}

type newsInput struct {
	Titulo           string     `json:"titulo" validate:"required,max=150"`
	Resumen          string     `json:"resumen" validate:"max=300"`
	Contenido        string     `json:"contenido" validate:"max=10000"`
	ImagenURL        string     `json:"imagen_url" validate:"max=500"`
	Categoria        string     `json:"categoria" validate:"max=50"`
	Prioridad        int        `json:"prioridad"`
	Destacada        bool       `json:"destacada"`
	FechaPublicacion *time.Time `json:"fecha_publicacion"`
	FechaExpiracion  *time.Time `json:"fecha_expiracion"`
}

func ListHandler(w http.ResponseWriter, r *http.Request) {
	q := db.DB.Where("activo = ?", true).Order("fecha_publicacion DESC")
	if v := r.URL.Query().Get("categoria"); v != "" {
		q = q.Where("categoria = ?", v)
	}

	var news []News
	if err := q.Limit(200).Find(&news).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error de base de datos")
		return
	}
	httpx.JSON(w, http.StatusOK, news)
}

// BannerHandler feeds the home carousel: published, unexpired, featured
// first, then priority and recency.
func BannerHandler(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	var news []News
	err := db.DB.
		Where("activo = ? AND fecha_publicacion <= ?", true, now).
		Where("fecha_expiracion IS NULL OR fecha_expiracion > ?", now).
		Order("destacada DESC, prioridad DESC, fecha_publicacion DESC").
		Limit(20).
		Find(&news).Error
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error de base de datos")
		return
	}
	httpx.JSON(w, http.StatusOK, news)
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := newsID(r)
	if !ok {
		httpx.Error(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}
	var item News
	if err := db.DB.First(&item, "id = ? AND activo = ?", id, true).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Noticia no encontrada")
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func CreateHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())
	if !auth.CanPublishNews(p) {
		httpx.Error(w, http.StatusForbidden, "Sin permiso para publicar")
		return
	}

	var input newsInput
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	published := time.Now().UTC()
	if input.FechaPublicacion != nil {
		published = *input.FechaPublicacion
	}
	item := News{
		Titulo:           input.Titulo,
		Resumen:          input.Resumen,
		Contenido:        input.Contenido,
		ImagenURL:        input.ImagenURL,
		Categoria:        input.Categoria,
		Prioridad:        input.Prioridad,
		Destacada:        input.Destacada,
		FechaPublicacion: published,
		FechaExpiracion:  input.FechaExpiracion,
		Activo:           true,
		IDAutor:          p.ID,
	}
	if err := db.DB.Create(&item).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error al crear la noticia")
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

func UpdateHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())
	if !auth.CanPublishNews(p) {
		httpx.Error(w, http.StatusForbidden, "Sin permiso para publicar")
		return
	}

	id, ok := newsID(r)
	if !ok {
		httpx.Error(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}
	var item News
	if err := db.DB.First(&item, "id = ? AND activo = ?", id, true).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Noticia no encontrada")
		return
	}

	var input newsInput
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	updates := map[string]interface{}{
		"titulo":     input.Titulo,
		"resumen":    input.Resumen,
		"contenido":  input.Contenido,
		"imagen_url": input.ImagenURL,
		"categoria":  input.Categoria,
		"prioridad":  input.Prioridad,
		"destacada":  input.Destacada,
	}
	if input.FechaPublicacion != nil {
		updates["fecha_publicacion"] = *input.FechaPublicacion
	}
	updates["fecha_expiracion"] = input.FechaExpiracion
	if err := db.DB.Model(&item).Updates(updates).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error al actualizar")
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func DeleteHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())
	if !auth.CanPublishNews(p) {
		httpx.Error(w, http.StatusForbidden, "Sin permiso para publicar")
		return
	}

	id, ok := newsID(r)
	if !ok {
		httpx.Error(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}
	res := db.DB.Model(&News{}).Where("id = ?", id).Update("activo", false)
	if res.Error != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error al eliminar")
		return
	}
	if res.RowsAffected == 0 {
		httpx.Error(w, http.StatusNotFound, "Noticia no encontrada")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"detail": "Noticia eliminada"})
}

// bumpCounter increments a view or click counter atomically in SQL.
func bumpCounter(w http.ResponseWriter, r *http.Request, column string) {
	id, ok := newsID(r)
	if !ok {
		httpx.Error(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}
	res := db.DB.Model(&News{}).
		Where("id = ? AND activo = ?", id, true).
		UpdateColumn(column, gorm.Expr(column+" + 1"))
	if res.Error != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error de base de datos")
		return
	}
	if res.RowsAffected == 0 {
		httpx.Error(w, http.StatusNotFound, "Noticia no encontrada")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"detail": "ok"})
}

func ViewHandler(w http.ResponseWriter, r *http.Request)  { bumpCounter(w, r, "vistas") }
func ClickHandler(w http.ResponseWriter, r *http.Request) { bumpCounter(w, r, "clicks") }

// --- Comments ---

func ListCommentsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := newsID(r)
	if !ok {
		httpx.Error(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}
	var comments []Comment
	err := db.DB.Where("id_noticia = ? AND activo = ?", id, true).
		Order("fecha_creacion").Find(&comments).Error
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error de base de datos")
		return
	}
	httpx.JSON(w, http.StatusOK, comments)
}

func CreateCommentHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())
	id, ok := newsID(r)
	if !ok {
		httpx.Error(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}

	var input struct {
		Texto string `json:"texto" validate:"required,max=1000"`
	}
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var item News
	if err := db.DB.First(&item, "id = ? AND activo = ?", id, true).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Noticia no encontrada")
		return
	}

	comment := Comment{
		IDNoticia: id,
		IDUsuario: p.ID,
		Texto:     input.Texto,
		Activo:    true,
	}
	if err := db.DB.Create(&comment).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error al comentar")
		return
	}
	httpx.JSON(w, http.StatusCreated, comment)
}

// DeleteCommentHandler soft-deletes. Authors remove their own; publishers
// moderate anything.
func DeleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())
	commentID, err := strconv.ParseUint(chi.URLParam(r, "commentID"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}

	var comment Comment
	if err := db.DB.First(&comment, "id = ? AND activo = ?", commentID, true).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Comentario no encontrado")
		return
	}
	if comment.IDUsuario != p.ID && !auth.CanPublishNews(p) {
		httpx.Error(w, http.StatusForbidden, "Solo el autor puede eliminar su comentario")
		return
	}

	if err := db.DB.Model(&comment).Update("activo", false).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error al eliminar")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"detail": "Comentario eliminado"})
}
