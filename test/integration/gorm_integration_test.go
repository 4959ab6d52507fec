package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"construction-docs-be/internal/entity"
	"construction-docs-be/internal/repository/specification"
	"construction-docs-be/internal/repository/unitofwork"
	"construction-docs-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDB(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.ProjectRepository())
	assert.NotNil(t, uow.DocumentRepository())
	assert.NotNil(t, uow.MessageRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	t.Run("Check Project Repository", func(t *testing.T) {
		count, err := uow.ProjectRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Project count: %d", count)
	})

	t.Run("Transactional Project Cascade", func(t *testing.T) {
		ctx := context.Background()
		accountId := uuid.New()

		project := &entity.Project{
			Id:        uuid.New(),
			AccountId: accountId,
			Name:      "Integration Test Project " + uuid.New().String(),
		}

		txUow := uowFactory.NewUnitOfWork(ctx)
		assert.NoError(t, txUow.Begin(ctx))
		defer txUow.Rollback()

		assert.NoError(t, txUow.ProjectRepository().Create(ctx, project))

		document := &entity.Document{
			Id:               uuid.New(),
			ProjectId:        project.Id,
			OriginalFilename: "integration.txt",
			StoredPath:       "integration/integration.txt",
			ExtractedText:    "integration text",
			DocumentType:     "contract",
			SizeBytes:        16,
		}
		assert.NoError(t, txUow.DocumentRepository().Create(ctx, document))

		message := &entity.Message{
			Id:        uuid.New(),
			ProjectId: project.Id,
			Role:      "user",
			Content:   "integration question",
		}
		assert.NoError(t, txUow.MessageRepository().Create(ctx, message))
		assert.Greater(t, message.Seq, int64(0), "seq should be assigned by the database")

		found, err := txUow.ProjectRepository().FindOne(ctx,
			specification.ByID{ID: project.Id},
			specification.AccountOwnedBy{AccountID: accountId},
		)
		assert.NoError(t, err)
		assert.NotNil(t, found)

		docs, err := txUow.DocumentRepository().FindAll(ctx,
			specification.ByProjectID{ProjectID: project.Id},
			specification.OrderBy{Field: "created_at"},
		)
		assert.NoError(t, err)
		assert.Len(t, docs, 1)

		// Cascade delete inside the transaction
		assert.NoError(t, txUow.MessageRepository().DeleteByProjectId(ctx, project.Id))
		assert.NoError(t, txUow.DocumentRepository().DeleteByProjectId(ctx, project.Id))
		assert.NoError(t, txUow.ProjectRepository().Delete(ctx, project.Id))

		remaining, err := txUow.MessageRepository().Count(ctx, specification.ByProjectID{ProjectID: project.Id})
		assert.NoError(t, err)
		assert.Zero(t, remaining)

		// Rollback via defer keeps the test database clean.
	})
}
