// Package logger provee un logger Zap singleton con scoping por contexto.
//
// # Decisiones de diseño
//
//   - Singleton: una sola instancia global inicializada con Init().
//   - Context scoping: cada request puede llevar un logger "scoped" con campos
//     adicionales (request_id, uid) sin crear un nuevo core.
//   - Environments: "dev" usa consola con colores, "prod" usa JSON.
//
// # Uso
//
// Inicialización (una vez, en main.go):
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
//	defer logger.L().Sync()
//
// En controllers/services (con contexto):
//
//	log := logger.From(ctx)
//	log.Info("settings updated", logger.UID(uid))
//
// Sin contexto (fallback al singleton):
//
//	logger.L().Info("application started")
package logger
