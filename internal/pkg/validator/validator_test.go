package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/estate-geo-service/internal/domain"
)

type kindRequest struct {
	Kind domain.RecordKind `validate:"required,record_kind"`
	Lat  *float64          `validate:"omitempty,min=-90,max=90"`
}

func TestValidate_RecordKind(t *testing.T) {
	assert.NoError(t, Validate(&kindRequest{Kind: domain.KindListing}))
	assert.NoError(t, Validate(&kindRequest{Kind: domain.KindPOI}))
	assert.Error(t, Validate(&kindRequest{Kind: "hospital"}))
	assert.Error(t, Validate(&kindRequest{}))
}

func TestValidate_LatitudeRange(t *testing.T) {
	ok, bad := 45.0, 91.0
	assert.NoError(t, Validate(&kindRequest{Kind: domain.KindSchool, Lat: &ok}))
	assert.Error(t, Validate(&kindRequest{Kind: domain.KindSchool, Lat: &bad}))
}
