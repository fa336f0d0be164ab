package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace_v1_202610/internal/model"
	"marketplace_v1_202610/internal/repository"
)

const testVendorID = "6f1c8a52-2d6e-4b0a-9a31-7a3c3f1d0b11"

type uploadFixture struct {
	svc      *UploadService
	catalog  *CatalogService
	storage  *memStorage
	products *failingProductRepo
}

func newUploadFixture(t *testing.T) *uploadFixture {
	t.Helper()
	db := setupServiceTestDB(t)
	createProfile(t, db, testVendorID, model.RoleVendor)
	createProfile(t, db, "customer-1", model.RoleCustomer)

	products := &failingProductRepo{ProductRepository: repository.NewProductRepository(db)}
	roles := NewRoleDirectory(repository.NewProfileRepository(db))
	storage := newMemStorage()

	svc := NewUploadService(products, roles, storage)
	ids := 0
	svc.newID = func() string {
		ids++
		return "00000000-0000-4000-8000-00000000000" + string(rune('0'+ids))
	}

	return &uploadFixture{
		svc:      svc,
		catalog:  NewCatalogService(products, storage),
		storage:  storage,
		products: products,
	}
}

func validInput() *UploadInput {
	return &UploadInput{
		Name:        "Ankara Tote",
		Description: "Hand-made tote bag",
		Price:       12500.5,
		Category:    "bags",
		Stock:       3,
		Image: &ImageFile{
			Filename:    "tote.png",
			ContentType: "image/png",
			Size:        1024,
			Body:        imageBody(1024),
		},
	}
}

func TestUpload_Success(t *testing.T) {
	f := newUploadFixture(t)
	vendor := &model.Identity{ID: testVendorID}

	product, err := f.svc.Upload(context.Background(), vendor, validInput())
	require.NoError(t, err)

	key := testVendorID + "/" + product.ID + "/tote.png"
	assert.Equal(t, key, product.ObjectKey())
	assert.True(t, f.storage.has(key), "图片应已写入存储")
	assert.Equal(t, testVendorID, product.VendorID)
	assert.True(t, product.IsActive)

	views, err := f.catalog.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, product.ID, views[0].ID)
	assert.Equal(t, f.storage.PublicURL(key), views[0].ImageURL)
	assert.Equal(t, "₦12,500.50", views[0].PriceDisplay)
}

func TestUpload_FilenameDirectoryStripped(t *testing.T) {
	f := newUploadFixture(t)
	in := validInput()
	in.Image.Filename = "../../etc/passwd.png"

	product, err := f.svc.Upload(context.Background(), &model.Identity{ID: testVendorID}, in)
	require.NoError(t, err)
	assert.Equal(t, "passwd.png", product.ImageName)
}

func TestUpload_Unauthenticated(t *testing.T) {
	f := newUploadFixture(t)

	_, err := f.svc.Upload(context.Background(), nil, validInput())

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.True(t, errors.Is(err, ErrUnauthenticated))
	assert.Equal(t, 0, f.storage.count())
}

func TestUpload_NotVendor(t *testing.T) {
	f := newUploadFixture(t)

	_, err := f.svc.Upload(context.Background(), &model.Identity{ID: "customer-1"}, validInput())

	var authErr *AuthError
	assert.True(t, errors.As(err, &authErr))
	assert.Equal(t, 0, f.storage.count())
}

func TestUpload_ProfileMissing(t *testing.T) {
	f := newUploadFixture(t)

	_, err := f.svc.Upload(context.Background(), &model.Identity{ID: "ghost"}, validInput())

	var lookupErr *ProfileLookupError
	assert.True(t, errors.As(err, &lookupErr))
	assert.Equal(t, 0, f.storage.count())
}

func TestUpload_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *UploadInput)
		want   string
	}{
		{"缺少图片", func(in *UploadInput) { in.Image = nil }, "Product image is required"},
		{"缺少名称", func(in *UploadInput) { in.Name = "  " }, "Product name is required"},
		{"缺少分类", func(in *UploadInput) { in.Category = "" }, "Category is required"},
		{"负价格", func(in *UploadInput) { in.Price = -1 }, "Price must be at least 0"},
		{"不足一分", func(in *UploadInput) { in.Price = 0.004 }, "Price must have at most 2 decimal places"},
		{"三位小数", func(in *UploadInput) { in.Price = 12.345 }, "Price must have at most 2 decimal places"},
		{"负库存", func(in *UploadInput) { in.Stock = -2 }, "Stock must be at least 0"},
		{"非图片", func(in *UploadInput) { in.Image.ContentType = "application/pdf" }, "Product image must be an image file"},
		{"超过 5MB", func(in *UploadInput) { in.Image.Size = MaxImageSize + 1 }, "Product image must be 5MB or smaller"},
		{"空文件", func(in *UploadInput) { in.Image.Size = 0 }, "Image size must be at least 1 byte"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newUploadFixture(t)
			in := validInput()
			tt.mutate(in)

			_, err := f.svc.Upload(context.Background(), &model.Identity{ID: testVendorID}, in)

			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr), "期望 ValidationError，实际 %v", err)
			assert.Equal(t, tt.want, validationErr.Message)
			assert.Equal(t, 0, f.storage.count(), "校验失败不应写存储")
		})
	}
}

func TestHasAtMostTwoDecimals(t *testing.T) {
	tests := []struct {
		in   float64
		want bool
	}{
		{0, true},
		{0.07, true},
		{12500.5, true},
		{19.99, true},
		{999999999.99, true},
		{0.004, false},
		{0.001, false},
		{12.345, false},
	}
	for _, tt := range tests {
		if got := hasAtMostTwoDecimals(tt.in); got != tt.want {
			t.Errorf("hasAtMostTwoDecimals(%v) = %v, 期望 %v", tt.in, got, tt.want)
		}
	}
}

func TestUpload_StorageFailure(t *testing.T) {
	f := newUploadFixture(t)
	f.storage.uploadErr = errors.New("bucket not found")

	_, err := f.svc.Upload(context.Background(), &model.Identity{ID: testVendorID}, validInput())

	var uploadErr *UploadError
	require.True(t, errors.As(err, &uploadErr))
	assert.True(t, strings.HasPrefix(uploadErr.ObjectKey, testVendorID+"/"))

	views, err := f.catalog.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, views, "图片上传失败时不应写入商品行")
}

func TestUpload_MetadataFailureLeavesOrphan(t *testing.T) {
	f := newUploadFixture(t)
	f.products.failUpsert = true

	_, err := f.svc.Upload(context.Background(), &model.Identity{ID: testVendorID}, validInput())

	var metaErr *MetadataWriteError
	require.True(t, errors.As(err, &metaErr))
	assert.True(t, errors.Is(err, errStoreDown))
	assert.NotEmpty(t, metaErr.ProductID)
	assert.Equal(t, testVendorID+"/"+metaErr.ProductID+"/tote.png", metaErr.ObjectKey)
	assert.True(t, f.storage.has(metaErr.ObjectKey), "元数据失败时图片保留，等待对账")

	f.products.failUpsert = false
	views, err := f.catalog.ListAll(context.Background())
	require.NoError(t, err)
	for _, v := range views {
		assert.NotEqual(t, metaErr.ProductID, v.ID)
	}
}

func TestUpload_DistinctIDs(t *testing.T) {
	f := newUploadFixture(t)
	vendor := &model.Identity{ID: testVendorID}

	p1, err := f.svc.Upload(context.Background(), vendor, validInput())
	require.NoError(t, err)
	p2, err := f.svc.Upload(context.Background(), vendor, validInput())
	require.NoError(t, err)

	assert.NotEqual(t, p1.ID, p2.ID)
	assert.Equal(t, 2, f.storage.count())
}
