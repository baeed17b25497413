package dto

// ErrorResponse cuerpo de error HTTP.
// Details lleva los errores por campo cuando la validación de la petición falla.
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// MessageResponse respuesta simple de confirmación.
type MessageResponse struct {
	Message string `json:"message"`
}
