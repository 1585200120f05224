package catalog_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"buildnchill-shop/internal/catalog"
	"buildnchill-shop/internal/catalog/db"
	"buildnchill-shop/internal/database/dbtest"
	"buildnchill-shop/internal/logger"
	"buildnchill-shop/internal/models"
	"buildnchill-shop/internal/realtime"
	"buildnchill-shop/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUploader struct {
	url   string
	err   error
	calls int
}

func (u *stubUploader) Validate(storage.Upload) (*storage.Image, error) {
	return &storage.Image{ContentType: "image/png", Ext: ".png"}, nil
}

func (u *stubUploader) Store(context.Context, string, *storage.Image) (string, error) {
	u.calls++
	return u.url, u.err
}

type failingBackend struct{ calls int }

func (b *failingBackend) Put(context.Context, string, string, []byte) (string, error) {
	b.calls++
	return "", errors.New("bucket unreachable")
}

func newService(t *testing.T, uploader storage.Uploader) (*catalog.Service, *realtime.MemoryBus) {
	bus := realtime.NewMemoryBus()
	svc := catalog.NewService(&db.DB{Bun: dbtest.Open(t)}, uploader, bus, logger.NewWriterLogger(io.Discard))
	return svc, bus
}

func mustCategory(t *testing.T, svc *catalog.Service, name string, order int) *models.Category {
	c, err := svc.CreateCategory(context.Background(), models.Category{Name: name, DisplayOrder: order, Active: true})
	require.NoError(t, err)
	return c
}

func TestCategoriesOrderedByDisplayOrderThenInsertion(t *testing.T) {
	svc, _ := newService(t, nil)
	ctx := context.Background()

	mustCategory(t, svc, "Ranks", 2)
	mustCategory(t, svc, "Keys", 1)
	mustCategory(t, svc, "Coins", 2)
	hidden, err := svc.CreateCategory(ctx, models.Category{Name: "Hidden", DisplayOrder: 0, Active: false})
	require.NoError(t, err)

	all, err := svc.ListCategories(ctx, false)
	require.NoError(t, err)
	names := []string{}
	for _, c := range all {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Hidden", "Keys", "Ranks", "Coins"}, names)

	active, err := svc.ListCategories(ctx, true)
	require.NoError(t, err)
	assert.Len(t, active, 3)
	for _, c := range active {
		assert.NotEqual(t, hidden.ID, c.ID)
	}
}

func TestCreateCategoryRequiresName(t *testing.T) {
	svc, _ := newService(t, nil)
	_, err := svc.CreateCategory(context.Background(), models.Category{Name: "   "})
	assert.ErrorIs(t, err, catalog.ErrInvalidInput)
}

func TestUpdateAndDeleteMissingCategory(t *testing.T) {
	svc, _ := newService(t, nil)
	ctx := context.Background()

	_, err := svc.UpdateCategory(ctx, "missing", models.Category{Name: "X"})
	assert.ErrorIs(t, err, catalog.ErrCategoryNotFound)
	assert.ErrorIs(t, svc.DeleteCategory(ctx, "missing"), catalog.ErrCategoryNotFound)
}

func TestCreateProductValidation(t *testing.T) {
	svc, _ := newService(t, nil)
	ctx := context.Background()
	cat := mustCategory(t, svc, "Ranks", 1)

	cases := map[string]models.Product{
		"missing name":        {Command: "lp user {username} parent add vip", CategoryID: cat.ID},
		"negative price":      {Name: "VIP", Command: "give {username} vip", Price: -1, CategoryID: cat.ID},
		"missing placeholder": {Name: "VIP", Command: "give vip", CategoryID: cat.ID},
		"missing category":    {Name: "VIP", Command: "give {username} vip"},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateProduct(ctx, p, nil)
			assert.ErrorIs(t, err, catalog.ErrInvalidInput)
		})
	}

	_, err := svc.CreateProduct(ctx, models.Product{Name: "VIP", Command: "give {username} vip", CategoryID: "nope"}, nil)
	assert.ErrorIs(t, err, catalog.ErrCategoryNotFound)
}

func TestCreateProductUploadsImage(t *testing.T) {
	up := &stubUploader{url: "https://cdn.example.net/images/vip.png"}
	svc, _ := newService(t, up)
	ctx := context.Background()
	cat := mustCategory(t, svc, "Ranks", 1)

	p, err := svc.CreateProduct(ctx, models.Product{
		Name: "VIP Rank", Command: "give {username} vip", Price: 100000, CategoryID: cat.ID, Active: true,
	}, &storage.Upload{Filename: "vip.png", Reader: bytes.NewReader([]byte("x"))})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.net/images/vip.png", p.ImageURL)
	assert.Equal(t, 1, up.calls)

	got, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ImageURL, got.ImageURL)
	assert.Equal(t, int64(100000), got.Price)
}

func TestUpdateProductKeepsPreviousImageWhenUploadFails(t *testing.T) {
	up := &stubUploader{url: "https://cdn.example.net/images/old.png"}
	svc, _ := newService(t, up)
	ctx := context.Background()
	cat := mustCategory(t, svc, "Ranks", 1)

	p, err := svc.CreateProduct(ctx, models.Product{
		Name: "VIP", Command: "give {username} vip", Price: 1, CategoryID: cat.ID, Active: true,
	}, &storage.Upload{Reader: bytes.NewReader([]byte("x"))})
	require.NoError(t, err)

	up.err = errors.New("bucket unreachable")
	updated, err := svc.UpdateProduct(ctx, p.ID, models.Product{
		Name: "VIP+", Command: "give {username} vip_plus", Price: 2, CategoryID: cat.ID, Active: true,
	}, &storage.Upload{Reader: bytes.NewReader([]byte("y"))})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.net/images/old.png", updated.ImageURL)

	got, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "VIP+", got.Name)
	assert.Equal(t, "https://cdn.example.net/images/old.png", got.ImageURL)
}

func TestRejectedImageFailsTheSave(t *testing.T) {
	backend := &failingBackend{}
	svc, bus := newService(t, storage.NewImageStore(backend, 16))
	ctx := context.Background()
	cat := mustCategory(t, svc, "Ranks", 1)

	changes, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	_, err = svc.CreateProduct(ctx, models.Product{
		Name: "VIP", Command: "give {username} vip", CategoryID: cat.ID, ImageURL: "old.png", Active: true,
	}, &storage.Upload{Filename: "huge.png", Size: 64, Reader: bytes.NewReader(make([]byte, 64))})
	assert.ErrorIs(t, err, catalog.ErrInvalidInput)
	assert.ErrorIs(t, err, storage.ErrImageTooLarge)

	products, err := svc.ListProducts(ctx, models.ProductFilter{})
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.Zero(t, backend.calls)
	assert.Empty(t, changes)

	svc.Images = storage.NewImageStore(backend, 1024)
	p, err := svc.CreateProduct(ctx, models.Product{
		Name: "VIP", Command: "give {username} vip", CategoryID: cat.ID, ImageURL: "old.png", Active: true,
	}, nil)
	require.NoError(t, err)

	_, err = svc.UpdateProduct(ctx, p.ID, models.Product{
		Name: "VIP+", Command: "give {username} vip", CategoryID: cat.ID, Active: true,
	}, &storage.Upload{Filename: "notes.txt", Reader: bytes.NewReader([]byte("plain text body"))})
	assert.ErrorIs(t, err, catalog.ErrInvalidInput)
	assert.ErrorIs(t, err, storage.ErrUnsupportedImage)
	assert.Zero(t, backend.calls)

	got, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "VIP", got.Name)
	assert.Equal(t, "old.png", got.ImageURL)
}

func TestListProductsFilters(t *testing.T) {
	svc, _ := newService(t, nil)
	ctx := context.Background()
	ranks := mustCategory(t, svc, "Ranks", 1)
	keys := mustCategory(t, svc, "Keys", 2)

	mk := func(name, cat string, order int, active bool) {
		_, err := svc.CreateProduct(ctx, models.Product{
			Name: name, Command: "give {username} x", CategoryID: cat, DisplayOrder: order, Active: active,
		}, nil)
		require.NoError(t, err)
	}
	mk("MVP", ranks.ID, 2, true)
	mk("VIP", ranks.ID, 1, true)
	mk("Legacy", ranks.ID, 0, false)
	mk("Crate Key", keys.ID, 1, true)

	ranked, err := svc.ListProducts(ctx, models.ProductFilter{CategoryID: ranks.ID, ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "VIP", ranked[0].Name)
	assert.Equal(t, "MVP", ranked[1].Name)

	all, err := svc.ListProducts(ctx, models.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestWritesPublishChanges(t *testing.T) {
	svc, bus := newService(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	cat := mustCategory(t, svc, "Ranks", 1)
	require.NoError(t, svc.DeleteCategory(ctx, cat.ID))

	for _, want := range []string{models.ChangeInsert, models.ChangeDelete} {
		select {
		case c := <-changes:
			assert.Equal(t, models.TableCategories, c.Table)
			assert.Equal(t, want, c.Event)
		case <-time.After(time.Second):
			t.Fatalf("missing %s change", want)
		}
	}
}
