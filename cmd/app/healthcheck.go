package main

import "net/http"

func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	env := envelope{
		"status": "available",
		"system_info": map[string]string{
			"environment":   app.config.Environment,
			"version":       app.config.Version,
			"storage":       app.config.StorageDriver,
			"notifications": notificationsStatus(app.config),
		},
	}

	err := app.writeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		app.logger.Error(err.Error())
		http.Error(w, "the server encountered a problem and could not process your request", http.StatusInternalServerError)
	}
}

func notificationsStatus(cfg *Config) string {
	if cfg.notificationsEnabled() {
		return "enabled"
	}
	return "disabled"
}
