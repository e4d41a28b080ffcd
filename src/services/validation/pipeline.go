package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"casasapi/src/domain/entities"

	"github.com/go-playground/validator/v10"
)

const (
	ReasonRequired       = "required"
	ReasonTooLong        = "too_long"
	ReasonInvalidEnum    = "invalid_enum"
	ReasonInvalidType    = "invalid_type"
	ReasonNotANumber     = "not_a_number"
	ReasonNotAnInteger   = "not_an_integer"
	ReasonOutOfRange     = "out_of_range"
	ReasonNotAList       = "not_a_list"
	ReasonTooManyEntries = "too_many_entries"
)

const (
	maxTitulo      = 200
	maxDescripcion = 5000
	maxGaleria     = 100
	maxAmenidades  = 50
)

const (
	msgTitulo      = "Título debe tener 1-200 caracteres"
	msgDescripcion = "Descripción debe tener 1-5000 caracteres"
	msgPrecio      = "Precio no puede estar vacío"
	msgUbicacion   = "Ubicación no puede estar vacía"
)

var typeMismatchMessages = map[string]string{
	"titulo":      msgTitulo,
	"categoria":   "Categoría inválida. Debe ser: Playa, Bosque o Ciudad",
	"descripcion": msgDescripcion,
	"precio":      msgPrecio,
	"ubicacion":   msgUbicacion,
	"img":         "Imagen principal debe ser una URL",
	"mapa_embed":  "mapa_embed debe ser texto",
}

// Error é a primeira violação encontrada.
type Error struct {
	Field   string
	Reason  string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Field, e.Message, e.Reason)
}

// TypeMismatch descreve um campo de texto que chegou com outro tipo JSON,
// usando a mensagem da regra do próprio campo.
func TypeMismatch(field string) *Error {
	message, ok := typeMismatchMessages[field]
	if !ok {
		message = fmt.Sprintf("Tipo inválido para %s", field)
	}
	return &Error{Field: field, Reason: ReasonInvalidType, Message: message}
}

// Candidate é o corpo recebido em create e update. Campos numéricos e listas
// chegam como any porque clientes mandam números, textos ou listas indistintamente.
type Candidate struct {
	Titulo      string `json:"titulo"`
	Categoria   string `json:"categoria"`
	Precio      string `json:"precio"`
	Rating      any    `json:"rating"`
	Img         string `json:"img"`
	Galeria     any    `json:"galeria"`
	Ubicacion   string `json:"ubicacion"`
	MapaEmbed   string `json:"mapa_embed"`
	Descripcion string `json:"descripcion"`
	Huespedes   any    `json:"huespedes"`
	Dormitorios any    `json:"dormitorios"`
	Banios      any    `json:"banios"`
	Amenidades  any    `json:"amenidades"`
}

// Recibidos indica quais campos obrigatórios vieram preenchidos.
func (c Candidate) Recibidos() map[string]bool {
	return map[string]bool{
		"titulo":      c.Titulo != "",
		"categoria":   c.Categoria != "",
		"precio":      c.Precio != "",
		"ubicacion":   c.Ubicacion != "",
		"img":         c.Img != "",
		"descripcion": c.Descripcion != "",
	}
}

type Result struct {
	Propiedad entities.Propiedad
	Warnings  []string
}

type Pipeline struct {
	validate *validator.Validate
	embed    EmbedPolicy
}

func NewPipeline(embed EmbedPolicy) *Pipeline {
	return &Pipeline{
		validate: validator.New(),
		embed:    embed,
	}
}

type rule func(c Candidate, out *Result) *Error

// Validate aplica as regras em ordem e para na primeira violação.
// O resultado depende só do candidato: mesma entrada, mesma saída.
func (p *Pipeline) Validate(c Candidate) (Result, error) {
	out := Result{Warnings: []string{}}

	rules := []rule{
		p.titulo,
		p.categoria,
		p.descripcion,
		p.precio,
		p.ubicacion,
		p.img,
		p.rating,
		p.huespedes,
		p.dormitorios,
		p.banios,
		p.galeria,
		p.amenidades,
		p.mapaEmbed,
	}

	for _, apply := range rules {
		if err := apply(c, &out); err != nil {
			return Result{}, err
		}
	}

	return out, nil
}

func (p *Pipeline) titulo(c Candidate, out *Result) *Error {
	titulo := strings.TrimSpace(c.Titulo)
	if p.validate.Var(titulo, "required") != nil {
		return &Error{Field: "titulo", Reason: ReasonRequired, Message: msgTitulo}
	}
	if p.validate.Var(titulo, fmt.Sprintf("max=%d", maxTitulo)) != nil {
		return &Error{Field: "titulo", Reason: ReasonTooLong, Message: msgTitulo}
	}
	out.Propiedad.Titulo = titulo
	return nil
}

func (p *Pipeline) categoria(c Candidate, out *Result) *Error {
	if p.validate.Var(c.Categoria, "required") != nil {
		return &Error{Field: "categoria", Reason: ReasonRequired, Message: "Faltan campos requeridos"}
	}
	if p.validate.Var(c.Categoria, "oneof=Playa Bosque Ciudad") != nil {
		return &Error{
			Field:   "categoria",
			Reason:  ReasonInvalidEnum,
			Message: fmt.Sprintf("Categoría inválida: %s. Debe ser: Playa, Bosque o Ciudad", c.Categoria),
		}
	}
	out.Propiedad.Categoria = entities.Categoria(c.Categoria)
	return nil
}

func (p *Pipeline) descripcion(c Candidate, out *Result) *Error {
	descripcion := strings.TrimSpace(c.Descripcion)
	if p.validate.Var(descripcion, "required") != nil {
		return &Error{Field: "descripcion", Reason: ReasonRequired, Message: msgDescripcion}
	}
	if p.validate.Var(descripcion, fmt.Sprintf("max=%d", maxDescripcion)) != nil {
		return &Error{Field: "descripcion", Reason: ReasonTooLong, Message: msgDescripcion}
	}
	out.Propiedad.Descripcion = descripcion
	return nil
}

func (p *Pipeline) precio(c Candidate, out *Result) *Error {
	precio := strings.TrimSpace(c.Precio)
	if p.validate.Var(precio, "required") != nil {
		return &Error{Field: "precio", Reason: ReasonRequired, Message: msgPrecio}
	}
	out.Propiedad.Precio = precio
	return nil
}

func (p *Pipeline) ubicacion(c Candidate, out *Result) *Error {
	ubicacion := strings.TrimSpace(c.Ubicacion)
	if p.validate.Var(ubicacion, "required") != nil {
		return &Error{Field: "ubicacion", Reason: ReasonRequired, Message: msgUbicacion}
	}
	out.Propiedad.Ubicacion = ubicacion
	return nil
}

func (p *Pipeline) img(c Candidate, out *Result) *Error {
	img := strings.TrimSpace(c.Img)
	if p.validate.Var(img, "required") != nil {
		return &Error{Field: "img", Reason: ReasonRequired, Message: "Faltan campos requeridos"}
	}
	out.Propiedad.Img = img
	return nil
}

// rating ausente ou ilegível vira 5.0; só rejeita número fora de [0, 5].
func (p *Pipeline) rating(c Candidate, out *Result) *Error {
	out.Propiedad.Rating = entities.DefaultRating

	rating, ok := parseNumber(c.Rating)
	if !ok {
		return nil
	}
	if p.validate.Var(rating, "gte=0,lte=5") != nil {
		return &Error{Field: "rating", Reason: ReasonOutOfRange, Message: "Rating debe estar entre 0 y 5"}
	}
	out.Propiedad.Rating = rating
	return nil
}

func (p *Pipeline) huespedes(c Candidate, out *Result) *Error {
	value, err := p.boundedInt(c.Huespedes, "huespedes", 1, 1, 10000, "Huéspedes debe ser un número entre 1 y 10000")
	if err != nil {
		return err
	}
	out.Propiedad.Huespedes = value
	return nil
}

func (p *Pipeline) dormitorios(c Candidate, out *Result) *Error {
	value, err := p.boundedInt(c.Dormitorios, "dormitorios", 0, 0, 500, "Dormitorios debe ser un número entre 0 y 500")
	if err != nil {
		return err
	}
	out.Propiedad.Dormitorios = value
	return nil
}

func (p *Pipeline) banios(c Candidate, out *Result) *Error {
	value, err := p.boundedInt(c.Banios, "banios", 0, 0, 500, "Baños debe ser un número entre 0 y 500")
	if err != nil {
		return err
	}
	out.Propiedad.Banios = value
	return nil
}

// boundedInt aceita número JSON ou texto numérico. Ausente assume o default.
func (p *Pipeline) boundedInt(raw any, field string, def, lower, upper int, message string) (int, *Error) {
	if isAbsent(raw) {
		return def, nil
	}

	number, ok := parseNumber(raw)
	if !ok {
		return 0, &Error{Field: field, Reason: ReasonNotANumber, Message: message}
	}
	if number != math.Trunc(number) {
		return 0, &Error{Field: field, Reason: ReasonNotAnInteger, Message: message}
	}
	if p.validate.Var(number, fmt.Sprintf("gte=%d,lte=%d", lower, upper)) != nil {
		return 0, &Error{Field: field, Reason: ReasonOutOfRange, Message: message}
	}
	return int(number), nil
}

func (p *Pipeline) galeria(c Candidate, out *Result) *Error {
	out.Propiedad.Galeria = []string{}
	if c.Galeria == nil {
		return nil
	}

	entries, ok := toList(c.Galeria)
	if !ok {
		return &Error{Field: "galeria", Reason: ReasonNotAList, Message: "Galería debe ser un array"}
	}
	if p.validate.Var(entries, fmt.Sprintf("max=%d", maxGaleria)) != nil {
		return &Error{Field: "galeria", Reason: ReasonTooManyEntries, Message: "Máximo 100 imágenes en galería"}
	}

	for _, entry := range entries {
		text, isText := entry.(string)
		if !isText || !p.isGalleryURI(text) {
			out.Warnings = append(out.Warnings, fmt.Sprintf("Imagen de galería descartada: %v", entry))
			continue
		}
		out.Propiedad.Galeria = append(out.Propiedad.Galeria, text)
	}
	return nil
}

// isGalleryURI aceita data URI de imagem ou URL https; o esquema não diferencia maiúsculas.
func (p *Pipeline) isGalleryURI(text string) bool {
	if strings.HasPrefix(strings.ToLower(text), "data:image") {
		return true
	}
	if p.validate.Var(text, "url") != nil {
		return false
	}
	parsed, err := url.Parse(text)
	return err == nil && strings.EqualFold(parsed.Scheme, "https") && parsed.Host != ""
}

func (p *Pipeline) amenidades(c Candidate, out *Result) *Error {
	out.Propiedad.Amenidades = []string{}

	var entries []any
	switch v := c.Amenidades.(type) {
	case nil:
		return nil
	case string:
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				entries = append(entries, part)
			}
		}
	default:
		list, ok := toList(v)
		if !ok {
			return &Error{Field: "amenidades", Reason: ReasonInvalidType, Message: "Amenidades debe ser un array"}
		}
		entries = list
	}

	if p.validate.Var(entries, fmt.Sprintf("max=%d", maxAmenidades)) != nil {
		return &Error{Field: "amenidades", Reason: ReasonTooManyEntries, Message: "Máximo 50 amenidades"}
	}

	for _, entry := range entries {
		switch v := entry.(type) {
		case string:
			if v = strings.TrimSpace(v); v != "" {
				out.Propiedad.Amenidades = append(out.Propiedad.Amenidades, v)
			}
		case nil:
		default:
			out.Propiedad.Amenidades = append(out.Propiedad.Amenidades, fmt.Sprint(v))
		}
	}
	return nil
}

func (p *Pipeline) mapaEmbed(c Candidate, out *Result) *Error {
	raw := strings.TrimSpace(c.MapaEmbed)
	if raw == "" {
		out.Warnings = append(out.Warnings, "mapa_embed vacío: la propiedad no mostrará mapa")
		return nil
	}

	src, ok := p.embed.Extract(raw)
	if !ok {
		out.Warnings = append(out.Warnings, "mapa_embed descartado: solo se aceptan mapas https de proveedores permitidos")
		return nil
	}
	out.Propiedad.MapaEmbed = src
	return nil
}

func isAbsent(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	}
	return false
}

func parseNumber(raw any) (float64, bool) {
	var number float64
	switch v := raw.(type) {
	case float64:
		number = v
	case float32:
		number = float64(v)
	case int:
		number = float64(v)
	case int64:
		number = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		number = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		number = parsed
	default:
		return 0, false
	}

	if math.IsNaN(number) || math.IsInf(number, 0) {
		return 0, false
	}
	return number, true
}

func toList(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case []any:
		return v, true
	case []string:
		list := make([]any, 0, len(v))
		for _, s := range v {
			list = append(list, s)
		}
		return list, true
	}
	return nil, false
}
