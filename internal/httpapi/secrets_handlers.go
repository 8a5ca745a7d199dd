package httpapi

import (
	"net/http"
	"sync/atomic"

	"jobtier-engine/internal/config"
	"jobtier-engine/internal/secrets"
)

type SecretsHandler struct {
	CfgVal *atomic.Value // stores config.Config
}

type setRedisPasswordReq struct {
	Password string `json:"password"`
}

// redisAccount is the configured keyring account, or one derived from the
// redis endpoint.
func redisAccount(cfg config.Config) string {
	rc := cfg.Store.Redis
	if rc.KeyringAccount != "" {
		return rc.KeyringAccount
	}
	addr := rc.Address
	if addr == "" {
		addr = rc.URL
	}
	return secrets.RedisKeyringAccount(addr, rc.DB)
}

func (h SecretsHandler) SetRedisPassword(w http.ResponseWriter, r *http.Request) {
	var req setRedisPasswordReq
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	cfg := h.CfgVal.Load().(config.Config)
	if err := secrets.SetRedisPassword(redisAccount(cfg), req.Password); err != nil {
		WriteError(w, r, http.StatusBadRequest, "keyring_failed", "failed to store password: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h SecretsHandler) DeleteRedisPassword(w http.ResponseWriter, r *http.Request) {
	cfg := h.CfgVal.Load().(config.Config)
	if err := secrets.DeleteRedisPassword(redisAccount(cfg)); err != nil {
		WriteError(w, r, http.StatusBadRequest, "keyring_failed", "failed to delete password: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
