package main

import "net/http"

// healthCheckHandler godoc
//
//	@Summary		Health check
//	@Description	Reports service status and the active PhonePe auth mode. Credentials are not checked.
//	@Tags			ops
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/health [get]
func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	data := map[string]string{
		"status":  "ok",
		"env":     app.config.env,
		"version": version,
	}
	if app.resolver != nil {
		data["auth_mode"] = app.resolver.Mode()
		data["phonepe_env"] = string(app.resolver.Environment())
	}

	if err := writeJSON(w, http.StatusOK, data); err != nil {
		app.internalServerError(w, r, err)
	}
}
