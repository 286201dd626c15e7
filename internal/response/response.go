package response

import "slices"

// Campos estándar del token response (RFC 6749 §5.1 / §5.2).
const (
	FieldAccessToken      = "access_token"
	FieldTokenType        = "token_type"
	FieldExpiresIn        = "expires_in"
	FieldRefreshToken     = "refresh_token"
	FieldIdentityToken    = "identity_token"
	FieldIDToken          = "id_token"
	FieldScope            = "scope"
	FieldError            = "error"
	FieldErrorDescription = "error_description"
	FieldErrorURI         = "error_uri"

	TokenTypeBearer = "Bearer"
)

// Reserved son los nombres que un campo de extensión nunca puede usar, estén o
// no presentes en la respuesta base.
var Reserved = []string{
	FieldAccessToken, FieldTokenType, FieldExpiresIn, FieldRefreshToken,
	FieldIdentityToken, FieldIDToken, FieldScope,
	FieldError, FieldErrorDescription, FieldErrorURI,
}

// IsReserved indica si name es un campo estándar.
func IsReserved(name string) bool { return slices.Contains(Reserved, name) }

// Response es el objeto JSON final del token endpoint.
type Response struct {
	fields *Fields
	isErr  bool
}

// Success arma la respuesta base exitosa: access_token, token_type, expires_in.
func Success(accessToken string, expiresIn int64) *Response {
	f := NewFields()
	_ = f.Set(FieldAccessToken, String(accessToken))
	_ = f.Set(FieldTokenType, String(TokenTypeBearer))
	_ = f.Set(FieldExpiresIn, Int(expiresIn))
	return &Response{fields: f}
}

// Error arma la respuesta base de error. No lleva ningún campo de token.
func Error(code, description string) *Response {
	f := NewFields()
	_ = f.Set(FieldError, String(code))
	_ = f.Set(FieldErrorDescription, String(description))
	return &Response{fields: f, isErr: true}
}

func (r *Response) IsError() bool { return r.isErr }

// Fields devuelve una copia de los campos.
func (r *Response) Fields() *Fields { return r.fields.Clone() }

func (r *Response) Get(name string) (Value, bool) { return r.fields.Get(name) }

func (r *Response) Has(name string) bool { return r.fields.Has(name) }

func (r *Response) Len() int { return r.fields.Len() }

// ErrorCode devuelve el código de error ("" si es success).
func (r *Response) ErrorCode() string {
	if !r.isErr {
		return ""
	}
	v, _ := r.fields.Get(FieldError)
	return v.Str()
}

func (r *Response) MarshalJSON() ([]byte, error) { return r.fields.MarshalJSON() }
