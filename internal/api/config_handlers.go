package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ConfigEntry – сохранённые настройки поведения блока
type ConfigEntry struct {
	Key   string                 `json:"key"`
	Value map[string]interface{} `json:"value"`
}

func (rs *RestServer) configsAvailable(c *gin.Context) bool {
	if rs.configs == nil {
		respondError(c, http.StatusServiceUnavailable, "Хранилище настроек не подключено")
		return false
	}
	return true
}

func (rs *RestServer) handleListConfigs(c *gin.Context) {
	if !rs.configsAvailable(c) {
		return
	}
	keys, err := rs.configs.Keys(c.Request.Context())
	if err != nil {
		respondError(c, statusForError(err), err.Error())
		return
	}
	respondOK(c, "Настройки получены", keys)
}

func (rs *RestServer) handleGetConfig(c *gin.Context) {
	if !rs.configsAvailable(c) {
		return
	}
	key := c.Param("key")
	var value map[string]interface{}
	found, err := rs.configs.Load(c.Request.Context(), key, &value)
	if err != nil {
		respondError(c, statusForError(err), err.Error())
		return
	}
	if !found {
		respondError(c, http.StatusNotFound, "Настройки не найдены")
		return
	}
	respondOK(c, "Настройки получены", ConfigEntry{Key: key, Value: value})
}

// handleDeleteConfig сбрасывает сохранённые настройки: при следующем запуске
// тип блока возьмёт встроенные свойства и сохранит их заново
func (rs *RestServer) handleDeleteConfig(c *gin.Context) {
	if !rs.configsAvailable(c) {
		return
	}
	if err := rs.configs.Delete(c.Request.Context(), c.Param("key")); err != nil {
		respondError(c, statusForError(err), err.Error())
		return
	}
	respondOK(c, "Настройки сброшены, применятся после перезапуска", nil)
}
