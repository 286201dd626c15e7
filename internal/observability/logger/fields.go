package logger

import (
	"time"

	"go.uber.org/zap"
)

// =================================================================================
// HTTP
// =================================================================================

func RequestID(v string) zap.Field { return zap.String("request_id", v) }

func Method(v string) zap.Field { return zap.String("method", v) }

func Path(v string) zap.Field { return zap.String("path", v) }

func Status(v int) zap.Field { return zap.Int("status", v) }

func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }

func ClientIP(v string) zap.Field { return zap.String("client_ip", v) }

// =================================================================================
// TOKEN ENDPOINT
// =================================================================================

// GrantType es el grant_type pedido, tal cual llegó.
func GrantType(v string) zap.Field { return zap.String("grant_type", v) }

func ClientID(v string) zap.Field { return zap.String("client_id", v) }

// Subject nunca debe llevar la contraseña ni el username crudo de un login fallido.
func Subject(v string) zap.Field { return zap.String("sub", v) }

// ErrorCode es el código OAuth2 de una respuesta de error.
func ErrorCode(v string) zap.Field { return zap.String("error_code", v) }

func State(v string) zap.Field { return zap.String("state", v) }

func Stage(v string) zap.Field { return zap.String("stage", v) }

func TokenID(v string) zap.Field { return zap.String("jti", v) }

// =================================================================================
// GENÉRICOS
// =================================================================================

func Component(v string) zap.Field { return zap.String("component", v) }

func Op(v string) zap.Field { return zap.String("op", v) }

func Layer(v string) zap.Field { return zap.String("layer", v) }

func Err(err error) zap.Field { return zap.Error(err) }

func String(key, v string) zap.Field { return zap.String(key, v) }

func Int(key string, v int) zap.Field { return zap.Int(key, v) }

func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }

func Strings(key string, v []string) zap.Field { return zap.Strings(key, v) }
