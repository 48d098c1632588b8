package padron

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ParticipaSonora/PS-Backend/internal/auth"
	"github.com/ParticipaSonora/PS-Backend/internal/db"
	"github.com/ParticipaSonora/PS-Backend/internal/httpx"
	"github.com/ParticipaSonora/PS-Backend/internal/logging"
	"github.com/ParticipaSonora/PS-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	maxUploadBytes = 256 << 20
	sampleRows     = 5
)

// parserFor picks the parser from the staged file's extension.
func parserFor(ext string) func([]byte) (*Table, error) {
	switch ext {
	case ".dbf":
		return ParseDBF
	case ".xlsx":
		return ParseExcel
	default:
		return ParseDelimited
	}
}

func readUpload(r *http.Request, field string) ([]byte, string, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, "", fmt.Errorf("formulario inválido: %w", err)
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", fmt.Errorf("falta el archivo %q", field)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		return nil, "", err
	}
	if len(data) > maxUploadBytes {
		return nil, "", fmt.Errorf("archivo demasiado grande")
	}
	return data, strings.ToLower(filepath.Ext(header.Filename)), nil
}

type preview struct {
	IDAnalisis     string     `json:"id_analisis,omitempty"`
	TotalRegistros int        `json:"total_registros"`
	Columnas       []string   `json:"columnas"`
	Muestra        [][]string `json:"muestra"`
	Advertencias   []string   `json:"advertencias,omitempty"`
	Bytes          int        `json:"bytes"`
}

func previewOf(t *Table, analysisID string) preview {
	return preview{
		IDAnalisis:     analysisID,
		TotalRegistros: len(t.Rows),
		Columnas:       t.Columns,
		Muestra:        t.Sample(sampleRows),
		Advertencias:   t.Warnings,
		Bytes:          t.Bytes,
	}
}

// AnalyzeDBFHandler previews a roll file without touching the database. The
// raw bytes are staged so /confirmar-importacion can commit the same file.
func AnalyzeDBFHandler(w http.ResponseWriter, r *http.Request) {
	data, ext, err := readUpload(r, "archivo")
	if err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	t, err := parserFor(ext)(data)
	if err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := CheckColumns(t.Columns); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	analysisID := uuid.New().String()
	if err := os.WriteFile(stagePath(analysisID, ext), data, 0o644); err != nil {
		logging.L().Errorw("staging roll file", "err", err)
		httpx.Error(w, http.StatusInternalServerError, "No se pudo preparar el análisis")
		return
	}
	httpx.JSON(w, http.StatusOK, previewOf(t, analysisID+ext))
}

// ConfirmImportHandler commits a previously analyzed file.
func ConfirmImportHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		IDAnalisis string `json:"id_analisis" validate:"required"`
	}
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	// The id is "{uuid}{ext}"; reject anything that is not a bare name.
	if input.IDAnalisis != filepath.Base(input.IDAnalisis) {
		httpx.Error(w, http.StatusUnprocessableEntity, "id_analisis inválido")
		return
	}
	path := filepath.Join(stageDir, input.IDAnalisis)
	data, err := os.ReadFile(path)
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "Análisis no encontrado o expirado")
		return
	}

	t, err := parserFor(strings.ToLower(filepath.Ext(path)))(data)
	if err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	summary, err := Import(db.DB, t, defaultBatchSize)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	os.Remove(path)
	httpx.JSON(w, http.StatusOK, summary)
}

func importUpload(w http.ResponseWriter, r *http.Request, wantExt string) {
	data, ext, err := readUpload(r, "archivo")
	if err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if wantExt != "" {
		ext = wantExt
	}

	t, err := parserFor(ext)(data)
	if err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	summary, err := Import(db.DB, t, defaultBatchSize)
	if err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func ImportDBFHandler(w http.ResponseWriter, r *http.Request)   { importUpload(w, r, ".dbf") }
func ImportExcelHandler(w http.ResponseWriter, r *http.Request) { importUpload(w, r, ".xlsx") }

// ImportDBFChunkedHandler receives a large roll file in pieces. Chunks are
// appended to a staged file keyed by session; the final chunk triggers the
// import. Batch commits keep a mid-file failure resumable.
func ImportDBFChunkedHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, "formulario inválido")
		return
	}

	session := r.FormValue("id_sesion")
	if session == "" || session != filepath.Base(session) {
		httpx.Error(w, http.StatusUnprocessableEntity, "id_sesion requerido")
		return
	}
	chunkNum, err1 := strconv.Atoi(r.FormValue("numero_chunk"))
	totalChunks, err2 := strconv.Atoi(r.FormValue("total_chunks"))
	if err1 != nil || err2 != nil || chunkNum < 1 || chunkNum > totalChunks {
		httpx.Error(w, http.StatusUnprocessableEntity, "numero_chunk y total_chunks inválidos")
		return
	}

	file, _, err := r.FormFile("chunk")
	if err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, "falta el archivo \"chunk\"")
		return
	}
	defer file.Close()

	path := stagePath("chunked_"+session, ".dbf")
	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if chunkNum == 1 {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}
	out, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "No se pudo almacenar el fragmento")
		return
	}
	written, err := io.Copy(out, file)
	out.Close()
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "No se pudo almacenar el fragmento")
		return
	}

	if chunkNum < totalChunks {
		httpx.JSON(w, http.StatusOK, map[string]interface{}{
			"estado":          "fragmento_recibido",
			"numero_chunk":    chunkNum,
			"total_chunks":    totalChunks,
			"bytes_recibidos": written,
		})
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "No se pudo reensamblar el archivo")
		return
	}
	defer os.Remove(path)

	t, err := ParseDBF(data)
	if err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	summary, err := Import(db.DB, t, defaultBatchSize)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

// ImportBulkDataHandler takes a pasted blob, tab or comma separated.
func ImportBulkDataHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Datos string `json:"datos" validate:"required"`
	}
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	t, err := ParseClipboard([]byte(input.Datos))
	if err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	summary, err := Import(db.DB, t, defaultBatchSize)
	if err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

// SearchHandler matches by name (accent-folded), voter key, section or
// municipality.
func SearchHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())

	var input struct {
		Nombre    string `json:"nombre"`
		Elector   string `json:"elector"`
		Seccion   string `json:"seccion"`
		Municipio string `json:"municipio"`
		Colonia   string `json:"colonia"`
	}
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	q := db.DB.Scopes(auth.PadronScope(p)).Where("activo = ?", true)
	if input.Nombre != "" {
		folded := "%" + utils.Fold(input.Nombre) + "%"
		q = q.Where(
			"LOWER(unaccent(nombre || ' ' || apellido_paterno || ' ' || apellido_materno)) LIKE ?",
			folded)
	}
	if input.Elector != "" {
		q = q.Where("elector = ?", strings.ToUpper(strings.TrimSpace(input.Elector)))
	}
	if input.Seccion != "" {
		q = q.Where("seccion = ?", input.Seccion)
	}
	if input.Municipio != "" {
		q = q.Where("LOWER(unaccent(municipio)) LIKE ?", "%"+utils.Fold(input.Municipio)+"%")
	}
	if input.Colonia != "" {
		q = q.Where("LOWER(unaccent(colonia)) LIKE ?", "%"+utils.Fold(input.Colonia)+"%")
	}

	var entries []PadronEntry
	if err := q.Order("apellido_paterno, apellido_materno, nombre").
		Limit(500).Find(&entries).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error de base de datos")
		return
	}
	httpx.JSON(w, http.StatusOK, entries)
}

func VerifyElectorHandler(w http.ResponseWriter, r *http.Request) {
	elector := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "elector")))
	if elector == "" {
		httpx.Error(w, http.StatusUnprocessableEntity, "clave de elector requerida")
		return
	}

	result, err := VerifyElector(db.DB, elector)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error de base de datos")
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func AssignHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())

	var input struct {
		IDRegistro uint `json:"id_registro" validate:"required"`
		IDLider    uint `json:"id_lider" validate:"required"`
	}
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	entry, err := AssignEntry(db.DB, input.IDRegistro, input.IDLider, p.ID)
	switch {
	case errors.Is(err, ErrAlreadyAssigned):
		httpx.JSON(w, http.StatusConflict, map[string]string{"estado": EstadoYaAsignado})
		return
	case errors.Is(err, ErrEntryNotFound):
		httpx.Error(w, http.StatusNotFound, "Registro no encontrado")
		return
	case errors.Is(err, ErrLeaderNotFound):
		httpx.Error(w, http.StatusUnprocessableEntity, "Líder inexistente o inactivo")
		return
	case err != nil:
		httpx.Error(w, http.StatusInternalServerError, "Error interno")
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func ReleaseHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		IDRegistro uint `json:"id_registro" validate:"required"`
	}
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	entry, err := ReleaseEntry(db.DB, input.IDRegistro)
	switch {
	case errors.Is(err, ErrEntryNotFound):
		httpx.Error(w, http.StatusNotFound, "Registro no encontrado")
		return
	case errors.Is(err, ErrNotAssigned):
		httpx.Error(w, http.StatusConflict, "El registro no tiene asignación")
		return
	case err != nil:
		httpx.Error(w, http.StatusInternalServerError, "Error interno")
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := ComputeStats(db.DB)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error de base de datos")
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

// ClearHandler wipes the roll. Used between election cycles; there is no
// partial variant on purpose.
func ClearHandler(w http.ResponseWriter, r *http.Request) {
	res := db.DB.Exec("DELETE FROM padron.registros")
	if res.Error != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error al limpiar el padrón")
		return
	}
	logging.L().Infow("roll cleared", "rows", res.RowsAffected)
	httpx.JSON(w, http.StatusOK, map[string]interface{}{
		"detail":               "Padrón eliminado",
		"registros_eliminados": res.RowsAffected,
	})
}
