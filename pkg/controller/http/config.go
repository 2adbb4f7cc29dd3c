package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/doowon-lab/dwportal/pkg/domain/model"
	"github.com/doowon-lab/dwportal/pkg/domain/types"
	"github.com/doowon-lab/dwportal/pkg/usecase"
	"github.com/doowon-lab/dwportal/pkg/utils/errutil"
)

type sectionMapResponse struct {
	Success      bool              `json:"success"`
	FieldConfigs *model.SectionMap `json:"fieldConfigs"`
}

type sectionConfigResponse struct {
	Success      bool                    `json:"success"`
	FieldConfigs []model.FieldDescriptor `json:"fieldConfigs"`
}

type trackerIDResponse struct {
	Success   bool `json:"success"`
	TrackerID int  `json:"trackerId"`
}

type formLayoutResponse struct {
	Success bool             `json:"success"`
	Layout  model.FormLayout `json:"layout"`
}

func sectionParam(r *http.Request) (types.Section, error) {
	section := types.Section(chi.URLParam(r, "section"))
	if !section.IsValid() {
		return "", goerr.Wrap(usecase.ErrSectionNotFound, "unknown section", goerr.V("section", section))
	}
	return section, nil
}

// fieldConfigsHandler serves the whole configuration document
func fieldConfigsHandler(configUC *usecase.ConfigUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := configUC.SectionMap(r.Context())
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, sectionMapResponse{Success: true, FieldConfigs: m})
	}
}

// sectionConfigHandler serves one section's descriptor list
func sectionConfigHandler(configUC *usecase.ConfigUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		section, err := sectionParam(r)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusNotFound)
			return
		}

		descriptors, err := configUC.GetSection(r.Context(), section)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusForConfigError(err))
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, sectionConfigResponse{Success: true, FieldConfigs: descriptors})
	}
}

// saveFieldConfigsHandler replaces the whole configuration document
func saveFieldConfigsHandler(configUC *usecase.ConfigUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var m model.SectionMap
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid configuration document"), http.StatusBadRequest)
			return
		}

		if err := configUC.SaveSectionMap(r.Context(), &m); err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrConfigSave) {
				status = http.StatusInternalServerError
			}
			errutil.HandleHTTP(r.Context(), w, err, status)
			return
		}

		saved, err := configUC.SectionMap(r.Context())
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, sectionMapResponse{Success: true, FieldConfigs: saved})
	}
}

// trackerIDHandler serves a section's tracker binding
func trackerIDHandler(configUC *usecase.ConfigUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		section, err := sectionParam(r)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusNotFound)
			return
		}

		trackerID, err := configUC.TrackerID(r.Context(), section)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusForConfigError(err))
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, trackerIDResponse{Success: true, TrackerID: trackerID})
	}
}

// formLayoutHandler serves the renderable form shape for a section
func formLayoutHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		section, err := sectionParam(r)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusNotFound)
			return
		}

		descriptors, err := uc.Config.GetSection(r.Context(), section)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusForConfigError(err))
			return
		}

		layout := uc.Form.Layout(section, descriptors)
		writeJSON(r.Context(), w, http.StatusOK, formLayoutResponse{Success: true, Layout: layout})
	}
}

func statusForConfigError(err error) int {
	if errors.Is(err, usecase.ErrSectionNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
