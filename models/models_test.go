package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestRegisterRequestValidate(t *testing.T) {
	valid := func() RegisterRequest {
		return RegisterRequest{Name: " Ada ", Email: " Ada@Example.COM ", Username: "ada_l", Password: "password1"}
	}

	r := valid()
	require.NoError(t, r.Validate())
	assert.Equal(t, "Ada", r.Name)
	assert.Equal(t, "ada@example.com", r.Email)

	tests := []struct {
		name   string
		mutate func(*RegisterRequest)
		want   string
	}{
		{"missing name", func(r *RegisterRequest) { r.Name = "  " }, "required"},
		{"missing password", func(r *RegisterRequest) { r.Password = "" }, "required"},
		{"bad email", func(r *RegisterRequest) { r.Email = "ada.example.com" }, "email is invalid"},
		{"email ends with at", func(r *RegisterRequest) { r.Email = "ada@" }, "email is invalid"},
		{"short username", func(r *RegisterRequest) { r.Username = "ab" }, "between 3 and 32"},
		{"bad username char", func(r *RegisterRequest) { r.Username = "ada-l" }, "letters, numbers"},
		{"short password", func(r *RegisterRequest) { r.Password = "short" }, "at least 8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(&r)
			assert.ErrorContains(t, r.Validate(), tt.want)
		})
	}
}

func TestLoginRequestValidate(t *testing.T) {
	r := LoginRequest{Login: "Ada@Example.com", Password: "x"}
	require.NoError(t, r.Validate())
	assert.Equal(t, "ada@example.com", r.Email)
	assert.Empty(t, r.Username)

	r = LoginRequest{Login: "ada_l", Password: "x"}
	require.NoError(t, r.Validate())
	assert.Equal(t, "ada_l", r.Username)

	r = LoginRequest{Username: " ada_l ", Password: "x"}
	require.NoError(t, r.Validate())
	assert.Equal(t, "ada_l", r.Username)

	r = LoginRequest{Password: "x"}
	assert.ErrorContains(t, r.Validate(), "email or username")

	r = LoginRequest{Email: "a@b.c"}
	assert.ErrorContains(t, r.Validate(), "password")
}

func TestUpdateProfileRequestValidate(t *testing.T) {
	var empty UpdateProfileRequest
	assert.Error(t, empty.Validate())

	r := UpdateProfileRequest{Email: ptr(" New@Mail.io ")}
	require.NoError(t, r.Validate())
	assert.Equal(t, "new@mail.io", *r.Email)

	r = UpdateProfileRequest{Name: ptr("   ")}
	assert.ErrorContains(t, r.Validate(), "name cannot be empty")

	r = UpdateProfileRequest{Password: ptr("1234567")}
	assert.ErrorContains(t, r.Validate(), "at least 8")

	r = UpdateProfileRequest{Username: ptr("x")}
	assert.Error(t, r.Validate())
}

func TestCreateProductRequestValidate(t *testing.T) {
	r := CreateProductRequest{
		Title:       ptr(" Mug "),
		Description: ptr("Ceramic"),
		Price:       ptr(9.99),
		Quantity:    ptr(10),
	}
	require.NoError(t, r.Validate())

	p := r.Product()
	assert.Equal(t, "Mug", p.Title)
	assert.Equal(t, "", p.Image)

	missing := CreateProductRequest{Title: ptr("Mug"), Description: ptr("Ceramic"), Price: ptr(1.0)}
	assert.ErrorContains(t, missing.Validate(), "missing required fields")

	for name, bad := range map[string]CreateProductRequest{
		"zero price":     {Title: ptr("a"), Description: ptr("b"), Price: ptr(0.0), Quantity: ptr(1)},
		"nan price":      {Title: ptr("a"), Description: ptr("b"), Price: ptr(math.NaN()), Quantity: ptr(1)},
		"negative qty":   {Title: ptr("a"), Description: ptr("b"), Price: ptr(1.0), Quantity: ptr(-1)},
		"blank title":    {Title: ptr(" "), Description: ptr("b"), Price: ptr(1.0), Quantity: ptr(0)},
		"blank describe": {Title: ptr("a"), Description: ptr(""), Price: ptr(1.0), Quantity: ptr(0)},
	} {
		assert.Error(t, bad.Validate(), name)
	}
}

func TestUpdateProductRequestApply(t *testing.T) {
	p := &Product{ID: 1, Title: "Mug", Description: "Ceramic", Price: 9.99, Quantity: 10, Image: "/uploads/a.png"}

	r := UpdateProductRequest{Quantity: ptr(0)}
	require.NoError(t, r.Validate())
	r.Apply(p)

	assert.Equal(t, 0, p.Quantity)
	assert.Equal(t, "Mug", p.Title)
	assert.Equal(t, "/uploads/a.png", p.Image)

	bad := UpdateProductRequest{Price: ptr(-3.0)}
	assert.Error(t, bad.Validate())
}
