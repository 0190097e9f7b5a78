package handler

import (
	"net/http"

	"github.com/coderunr/judgeproxy/internal/types"
)

// GetLanguages lists the languages the judge can run
func (h *Handler) GetLanguages(w http.ResponseWriter, r *http.Request) {
	languages := h.languages.List()

	response := make([]types.LanguageInfo, len(languages))
	for i, lang := range languages {
		response[i] = types.LanguageInfo{
			Language: lang.Key,
			ID:       lang.ID,
			Name:     lang.Name,
			Version:  lang.Version.String(),
		}
	}

	h.sendJSON(w, response, http.StatusOK)
}
