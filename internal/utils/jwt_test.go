package utils_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/Windi-Fikriyansyah/admin_be_commerce/internal/models"
	"github.com/Windi-Fikriyansyah/admin_be_commerce/internal/utils"
)

func TestSignAndParseJWT(t *testing.T) {
	c := qt.New(t)

	token, err := utils.SignJWT("rahasia", "user-123", models.RoleManager, 60)
	c.Assert(err, qt.IsNil)

	claims, err := utils.ParseJWT("rahasia", token)
	c.Assert(err, qt.IsNil)
	c.Assert(claims.UserID, qt.Equals, "user-123")
	c.Assert(claims.Role, qt.Equals, models.RoleManager)
	c.Assert(claims.ExpiresAt, qt.IsNotNil)
}

func TestParseJWTWrongSecret(t *testing.T) {
	c := qt.New(t)

	token, err := utils.SignJWT("rahasia", "user-123", models.RoleAdmin, 60)
	c.Assert(err, qt.IsNil)

	_, err = utils.ParseJWT("bukan-rahasia", token)
	c.Assert(err, qt.IsNotNil)
}

func TestParseJWTExpired(t *testing.T) {
	c := qt.New(t)

	token, err := utils.SignJWT("rahasia", "user-123", models.RoleStaff, -1)
	c.Assert(err, qt.IsNil)

	_, err = utils.ParseJWT("rahasia", token)
	c.Assert(err, qt.IsNotNil)
}
