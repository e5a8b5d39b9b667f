package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudent_ProfileHidesSensitiveFields(t *testing.T) {
	matric := "MAT00001"
	student := Student{
		ID:           uuid.New(),
		Username:     "alice",
		PasswordHash: "$2a$12$secret",
		Name:         "Alice A",
		MatricNumber: &matric,
	}

	raw, err := json.Marshal(student.Profile())
	require.NoError(t, err)

	assert.JSONEq(t, `{"username":"alice","name":"Alice A","matric_number":"MAT00001"}`, string(raw))
	assert.NotContains(t, string(raw), "secret")
	assert.NotContains(t, string(raw), student.ID.String())
}

func TestStudent_ProfileCopiesMatricNumber(t *testing.T) {
	matric := "MAT00002"
	student := Student{Username: "bob", Name: "Bob", MatricNumber: &matric}

	profile := student.Profile()
	*profile.MatricNumber = "MAT99999"

	assert.Equal(t, "MAT00002", *student.MatricNumber)
}

func TestStudent_Unmatriculated(t *testing.T) {
	student := Student{Username: "carol", Name: "Carol"}

	assert.False(t, student.IsMatriculated())
	assert.Nil(t, student.Profile().MatricNumber)

	raw, err := json.Marshal(student.Profile())
	require.NoError(t, err)
	assert.JSONEq(t, `{"username":"carol","name":"Carol","matric_number":null}`, string(raw))
}

func TestProfiles(t *testing.T) {
	profiles := Profiles([]Student{{Username: "a", Name: "A"}, {Username: "b", Name: "B"}})

	require.Len(t, profiles, 2)
	assert.Equal(t, "a", profiles[0].Username)
	assert.Equal(t, "b", profiles[1].Username)
	assert.NotNil(t, Profiles(nil))
}
