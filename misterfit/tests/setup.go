package tests

import (
	"bytes"
	"context"
	"testing"

	"misterfit_platform/misterfit/auth"
	"misterfit_platform/misterfit/genai"
	"misterfit_platform/misterfit/schema"
	"misterfit_platform/misterfit/services"

	"github.com/go-chi/chi/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	platform  services.Platform
	api       chi.Router
	db        *gorm.DB
	generator *generatorStub
}

const (
	adminName     = "admin123"
	adminEmail    = "admin123@mail.com"
	adminPassword = "Admin_password123"
)

// generatorStub stands in for the real provider so tests never make
// network calls.
type generatorStub struct {
	response string
	err      error
	prompts  []string
}

func (g *generatorStub) Generate(ctx context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

func setupTestEnv(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}

	err = db.AutoMigrate(schema.AllModels()...)
	if err != nil {
		t.Fatal(err)
	}

	userAuth, err := auth.NewIdentityProvider(
		db,
		auth.NewAuditLogger(new(bytes.Buffer)),
		auth.IdentityProviderArgs{
			Secret:        []byte("290zcv02ai249"),
			AdminName:     adminName,
			AdminEmail:    adminEmail,
			AdminPassword: adminPassword,
		},
	)
	if err != nil {
		t.Fatal(err)
	}

	generator := &generatorStub{response: "sugestão de treino gerada"}

	platform := services.NewPlatform(db, userAuth, generator)

	return &testEnv{platform: platform, api: platform.Routes(), db: db, generator: generator}
}

var _ genai.Generator = (*generatorStub)(nil)

func (t *testEnv) newClient() *client {
	return &client{api: t.api}
}

func (t *testEnv) newUser(tt *testing.T, name, role string) *client {
	c := t.newClient()
	login, err := c.register(name, name+"@mail.com", name+"_Password1", role)
	if err != nil {
		tt.Fatal(err)
	}

	if err := c.login(login); err != nil {
		tt.Fatal(err)
	}

	return c
}

func (t *testEnv) adminClient(tt *testing.T) *client {
	c := t.newClient()
	err := c.login(loginInfo{Email: adminEmail, Password: adminPassword})
	if err != nil {
		tt.Fatal(err)
	}
	return c
}
