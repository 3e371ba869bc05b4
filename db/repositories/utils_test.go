package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gitlab.com/testpaper/papergen/models"
)

// TestUpdateField tests the UpdateField function for updating struct fields using reflection.
// It covers cases where the input can be a struct or a pointer to a struct.
func TestUpdateField(t *testing.T) {
	// Updating a field in a struct (not a pointer), with a convertible value
	modified1, err := UpdateField(models.Subject{ID: 1}, "ID", 2)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), modified1.ID)

	// Updating a field through a pointer
	modified2, err := UpdateField(&models.Subject{Name: "Math"}, "Name", "Physics")
	assert.NoError(t, err)
	assert.Equal(t, "Physics", modified2.Name)

	// Non-existent field
	_, err = UpdateField(models.Subject{}, "Title", "a")
	assert.Error(t, err)

	// Incompatible value
	_, err = UpdateField(models.Subject{}, "ID", "a")
	assert.Error(t, err)
}

// TestEmptyValue tests the IsEmptyValue function for checking if a struct has non zero value.
func TestEmptyValue(t *testing.T) {
	assert.True(t, IsEmptyValue(nil))
	assert.True(t, IsEmptyValue(models.Subject{}))
	assert.True(t, IsEmptyValue(&models.Subject{}))
	assert.True(t, IsEmptyValue((*models.Subject)(nil)))

	assert.False(t, IsEmptyValue(models.Subject{Name: "Math"}))
	assert.False(t, IsEmptyValue(&models.Subject{Name: "Math"}))
}

func TestResolveField(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		found bool
	}{
		{in: "Name", want: "Name", found: true},
		{in: "name", want: "Name", found: true},
		{in: "subId", want: "ID", found: true},
		{in: "id", want: "ID", found: true},
		{in: "createdAt", want: "CreatedAt", found: true},
		{in: "name; DROP TABLE subjects", found: false},
	}

	for _, tt := range tests {
		got, ok := ResolveField[models.Subject](tt.in)
		assert.Equal(t, tt.found, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestFieldJSONTag(t *testing.T) {
	assert.Equal(t, "subId", FieldJSONTag[models.Subject]("ID"))
	assert.Equal(t, "description", FieldJSONTag[models.Subject]("Description"))
	assert.Equal(t, "Unknown", FieldJSONTag[models.Subject]("Unknown"))
	assert.True(t, HasField[models.Subject]("CreatedAt"))
	assert.False(t, HasField[models.Subject]("DeletedAt"))
}

func TestIsNew(t *testing.T) {
	assert.True(t, IsNew[models.Subject](models.Subject{Name: "Math"}))
	assert.False(t, IsNew[models.Subject](models.Subject{ID: 7}))
}
