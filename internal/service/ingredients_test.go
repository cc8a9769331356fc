package service_test

import (
	"context"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/foodeasy/backend/internal/logging"
	"github.com/foodeasy/backend/internal/service"
	"github.com/foodeasy/backend/internal/testhelpers"
	"github.com/foodeasy/backend/internal/types"
)

func TestGetIngredientsForItems(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	testhelpers.SeedCatalog(t, db)
	ingredients := service.NewIngredientService(db)

	byItem, err := ingredients.GetIngredientsForItems(context.Background(),
		[]uint{testhelpers.ItemPoha, testhelpers.ItemDalRice, testhelpers.ItemFruitBowl})
	require.NoError(t, err)

	require.Len(t, byItem[testhelpers.ItemPoha], 2)
	assert.Equal(t, types.Ingredient{Name: "Flattened Rice", Category: "Grains", Quantity: 1, Unit: "cup"}, byItem[testhelpers.ItemPoha][0])
	assert.Equal(t, service.UncategorizedIngredient, byItem[testhelpers.ItemDalRice][1].Category)
	assert.NotContains(t, byItem, testhelpers.ItemFruitBowl)
}

type countingLookup struct {
	next  service.IngredientLookup
	calls [][]uint
}

func (c *countingLookup) GetIngredientsForItems(ctx context.Context, ids []uint) (map[uint][]types.Ingredient, error) {
	c.calls = append(c.calls, ids)
	return c.next.GetIngredientsForItems(ctx, ids)
}

func TestCachedIngredientLookupFallsBackWhenRedisIsDown(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	testhelpers.SeedCatalog(t, db)

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer client.Close()

	backing := &countingLookup{next: service.NewIngredientService(db)}
	cached := service.NewCachedIngredientLookup(backing, client, time.Minute, logging.Nop())

	byItem, err := cached.GetIngredientsForItems(context.Background(), []uint{testhelpers.ItemPaneerWrap})
	require.NoError(t, err)
	assert.Len(t, byItem[testhelpers.ItemPaneerWrap], 2)
	assert.Len(t, backing.calls, 1)
}

func TestCachedIngredientLookupRedis(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-based test in short mode")
	}
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed, skipping container-based test")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("failed to start redis container: %v", err)
	}
	t.Cleanup(func() { container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	defer client.Close()

	db := testhelpers.SetupSQLiteDB(t)
	testhelpers.SeedCatalog(t, db)
	backing := &countingLookup{next: service.NewIngredientService(db)}
	cached := service.NewCachedIngredientLookup(backing, client, time.Minute, logging.Nop())

	ids := []uint{testhelpers.ItemPoha, testhelpers.ItemFruitBowl}
	first, err := cached.GetIngredientsForItems(ctx, ids)
	require.NoError(t, err)
	second, err := cached.GetIngredientsForItems(ctx, ids)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, backing.calls, 1, "second lookup is served from redis, including items without ingredients")
}
