// Package logger expone el logger zap del servicio.
//
// Init configura la instancia global una sola vez (main). El host HTTP inyecta
// en el contexto un logger con request_id y cada capa lo recupera con From(ctx):
//
//	log := logger.From(ctx).With(logger.Layer("token"))
//	log.Info("token issued", logger.GrantType(gt), logger.ClientID(id))
//
// "dev" escribe consola con colores, "prod" JSON.
package logger
