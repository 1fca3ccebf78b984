package buyers

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormModelRoundTrip(t *testing.T) {
	form := validForm()
	model, err := form.ToModel()
	require.NoError(t, err)

	assert.Equal(t, "Chandigarh", model.City)
	assert.Equal(t, "NEW", model.Status)
	require.NotNil(t, model.BHK)
	assert.Equal(t, "TWO", *model.BHK)
	assert.Equal(t, "T0_3M", model.Timeline)
	assert.Equal(t, "WEBSITE", model.Source)

	back := FormFromModel(model)
	if diff := cmp.Diff(form, back); diff != "" {
		t.Errorf("round trip mismatch: %s", diff)
	}
}

func TestToModelDefaultsStatus(t *testing.T) {
	form := validForm()
	form.Status = ""
	model, err := form.ToModel()
	require.NoError(t, err)
	assert.Equal(t, "NEW", model.Status)
}

func TestToModelEmptyOptionalsStoredAsNull(t *testing.T) {
	form := validForm()
	form.Email = "  "
	form.Notes = ""
	form.BHK = ""
	form.PropertyType = "Plot"
	model, err := form.ToModel()
	require.NoError(t, err)
	assert.Nil(t, model.Email)
	assert.Nil(t, model.Notes)
	assert.Nil(t, model.BHK)
}
