package handlers

import (
	"net/http"
	"strings"

	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/campaign-inventory/dashboard/internal/httpx"
	"github.com/campaign-inventory/dashboard/internal/inventory"
)

type rangeParams struct {
	StartDate *string
	EndDate   *string
}

type slotParams struct {
	Brand   *string
	Status  *string
	Product *string
	Client  *string
	Limit   *int
}

func bindQuery(r *http.Request, name string, dest any) error {
	return runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest)
}

func writeBindError(w http.ResponseWriter, r *http.Request, name string, err error) {
	httpx.WriteError(w, r, http.StatusBadRequest, "validation_error", "Invalid format for parameter "+name, map[string]string{"parameter": name, "reason": err.Error()})
}

// bindRange reads start_date and end_date. A nil range means both were
// omitted.
func bindRange(w http.ResponseWriter, r *http.Request) (*inventory.DateRange, bool) {
	var p rangeParams
	if err := bindQuery(r, "start_date", &p.StartDate); err != nil {
		writeBindError(w, r, "start_date", err)
		return nil, false
	}
	if err := bindQuery(r, "end_date", &p.EndDate); err != nil {
		writeBindError(w, r, "end_date", err)
		return nil, false
	}
	rng, err := inventory.ParseRange(deref(p.StartDate), deref(p.EndDate))
	if err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_range", err.Error(), nil)
		return nil, false
	}
	return rng, true
}

func bindSlotParams(w http.ResponseWriter, r *http.Request) (slotParams, *inventory.DateRange, bool) {
	var p slotParams
	rng, ok := bindRange(w, r)
	if !ok {
		return p, nil, false
	}
	for _, f := range []struct {
		name string
		dest any
	}{
		{"brand", &p.Brand},
		{"status", &p.Status},
		{"product", &p.Product},
		{"client", &p.Client},
		{"limit", &p.Limit},
	} {
		if err := bindQuery(r, f.name, f.dest); err != nil {
			writeBindError(w, r, f.name, err)
			return p, nil, false
		}
	}
	return p, rng, true
}

func bindString(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	var v *string
	if err := bindQuery(r, name, &v); err != nil {
		writeBindError(w, r, name, err)
		return "", false
	}
	return deref(v), true
}

func bindLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	var v *int
	if err := bindQuery(r, "limit", &v); err != nil {
		writeBindError(w, r, "limit", err)
		return 0, false
	}
	if v == nil {
		return 0, true
	}
	return *v, true
}

func bindAsOf(w http.ResponseWriter, r *http.Request) (*openapi_types.Date, bool) {
	var v *openapi_types.Date
	if err := bindQuery(r, "as_of", &v); err != nil {
		writeBindError(w, r, "as_of", err)
		return nil, false
	}
	return v, true
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
