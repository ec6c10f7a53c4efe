package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"artsstore/assetstore"
	"artsstore/config"
	"artsstore/models"
	"artsstore/queue"
	"artsstore/repositories"

	"gorm.io/gorm"
)

func setTestConfig(t *testing.T) {
	t.Helper()
	config.AppConfig = &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret", ExpireHours: 1},
		Media: config.MediaConfig{
			ChunkSize:       2 << 20,
			DirectThreshold: 2 << 20,
			MaxFileSize:     100 << 20,
			ImageExtensions: []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp"},
			ModelExtensions: []string{".glb", ".gltf"},
			MaxWidth:        1200,
			MaxHeight:       1200,
			Quality:         85,
		},
		Queue:      config.QueueConfig{CompletedRetention: 60, SessionTTL: 1800},
		Pagination: config.PaginationConfig{DefaultPageSize: 20, MaxPageSize: 100},
	}
}

type fakeTxManager struct{}

func (fakeTxManager) WithTransaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeUserRepo struct {
	usersByID   map[uint]models.User
	usersByName map[string]models.User
	nextID      uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		usersByID:   make(map[uint]models.User),
		usersByName: make(map[string]models.User),
		nextID:      1,
	}
}

func (r *fakeUserRepo) CountByUsername(_ context.Context, username string) (int64, error) {
	if _, ok := r.usersByName[username]; ok {
		return 1, nil
	}
	return 0, nil
}

func (r *fakeUserRepo) Create(_ context.Context, _ *gorm.DB, user *models.User) error {
	if user.ID == 0 {
		user.ID = r.nextID
		r.nextID++
	}
	r.usersByID[user.ID] = *user
	r.usersByName[user.Username] = *user
	return nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, _ *gorm.DB, username string) (models.User, error) {
	user, ok := r.usersByName[username]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, _ *gorm.DB, userID uint) (models.User, error) {
	user, ok := r.usersByID[userID]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

type fakeProductRepo struct {
	products map[uint]models.Product
	nextID   uint
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uint]models.Product), nextID: 1}
}

func (r *fakeProductRepo) Count(context.Context, *gorm.DB, repositories.ListProductsInput) (int64, error) {
	return int64(len(r.products)), nil
}

func (r *fakeProductRepo) List(_ context.Context, _ *gorm.DB, in repositories.ListProductsInput) ([]models.Product, error) {
	var out []models.Product
	for _, p := range r.products {
		if in.PublishedOnly && !p.Published {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, _ *gorm.DB, productID uint) (models.Product, error) {
	p, ok := r.products[productID]
	if !ok {
		return models.Product{}, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *fakeProductRepo) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, productID uint) (models.Product, error) {
	return r.GetByID(ctx, tx, productID)
}

func (r *fakeProductRepo) Create(_ context.Context, _ *gorm.DB, product *models.Product) error {
	if product.ID == 0 {
		product.ID = r.nextID
		r.nextID++
	}
	r.products[product.ID] = *product
	return nil
}

func (r *fakeProductRepo) UpdateByID(_ context.Context, _ *gorm.DB, productID uint, updates map[string]interface{}) error {
	if _, ok := r.products[productID]; !ok {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *fakeProductRepo) AddStock(_ context.Context, _ *gorm.DB, productID uint, delta int) error {
	p, ok := r.products[productID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Stock += delta
	r.products[productID] = p
	return nil
}

func (r *fakeProductRepo) DeleteByID(_ context.Context, _ *gorm.DB, productID uint) error {
	delete(r.products, productID)
	return nil
}

type fakeOrderRepo struct {
	orders map[string]models.Order
	nextID uint
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]models.Order), nextID: 1}
}

func (r *fakeOrderRepo) Count(context.Context, *gorm.DB, repositories.ListOrdersInput) (int64, error) {
	return int64(len(r.orders)), nil
}

func (r *fakeOrderRepo) List(_ context.Context, _ *gorm.DB, in repositories.ListOrdersInput) ([]models.Order, error) {
	var out []models.Order
	for _, o := range r.orders {
		if in.UserID != 0 && o.UserID != in.UserID {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (r *fakeOrderRepo) Create(_ context.Context, _ *gorm.DB, order *models.Order) error {
	if order.ID == 0 {
		order.ID = r.nextID
		r.nextID++
	}
	r.orders[order.OrderNo] = *order
	return nil
}

func (r *fakeOrderRepo) GetByOrderNo(_ context.Context, _ *gorm.DB, orderNo string) (models.Order, error) {
	o, ok := r.orders[orderNo]
	if !ok {
		return models.Order{}, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (r *fakeOrderRepo) GetByOrderNoAndUser(_ context.Context, _ *gorm.DB, orderNo string, userID uint) (models.Order, error) {
	o, ok := r.orders[orderNo]
	if !ok || o.UserID != userID {
		return models.Order{}, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, _ *gorm.DB, orderNo string, status string) error {
	o, ok := r.orders[orderNo]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.Status = status
	r.orders[orderNo] = o
	return nil
}

type fakeMediaTaskRepo struct {
	tasks map[string]*models.MediaTask
}

func newFakeMediaTaskRepo() *fakeMediaTaskRepo {
	return &fakeMediaTaskRepo{tasks: make(map[string]*models.MediaTask)}
}

func (r *fakeMediaTaskRepo) Create(_ context.Context, _ *gorm.DB, task *models.MediaTask) error {
	cp := *task
	r.tasks[task.TaskID] = &cp
	return nil
}

func (r *fakeMediaTaskRepo) GetByTaskID(_ context.Context, _ *gorm.DB, taskID string) (models.MediaTask, error) {
	task, ok := r.tasks[taskID]
	if !ok {
		return models.MediaTask{}, gorm.ErrRecordNotFound
	}
	return *task, nil
}

func (r *fakeMediaTaskRepo) GetByUploadID(_ context.Context, _ *gorm.DB, uploadID string) (models.MediaTask, error) {
	for _, task := range r.tasks {
		if task.UploadID == uploadID {
			return *task, nil
		}
	}
	return models.MediaTask{}, gorm.ErrRecordNotFound
}

func (r *fakeMediaTaskRepo) UpdateByTaskID(_ context.Context, _ *gorm.DB, taskID string, updates map[string]interface{}) error {
	if _, ok := r.tasks[taskID]; !ok {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *fakeMediaTaskRepo) ListCompletedBefore(_ context.Context, _ *gorm.DB, cutoff time.Time) ([]models.MediaTask, error) {
	var out []models.MediaTask
	for _, task := range r.tasks {
		if task.Status == models.TaskStatusCompleted && task.CompletedAt != nil && task.CompletedAt.Before(cutoff) {
			out = append(out, *task)
		}
	}
	return out, nil
}

func (r *fakeMediaTaskRepo) DeleteByID(_ context.Context, _ *gorm.DB, id uint) error {
	for taskID, task := range r.tasks {
		if task.ID == id {
			delete(r.tasks, taskID)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeAssetStore struct {
	uploads []assetstore.UploadInput
	err     error
}

func (s *fakeAssetStore) Upload(_ context.Context, in assetstore.UploadInput) (models.StoredAsset, error) {
	if s.err != nil {
		return models.StoredAsset{}, s.err
	}
	s.uploads = append(s.uploads, in)
	key := in.Folder + "/" + in.Name
	return models.StoredAsset{
		URL:      "http://assets/" + key,
		PublicID: key,
		Format:   "test",
		Bytes:    int64(len(in.Data)),
	}, nil
}

type fakeQueue struct {
	available bool
	submitErr error
	submitted []queue.SubmitInput
}

func (q *fakeQueue) Available(context.Context) bool {
	return q.available
}

func (q *fakeQueue) Submit(_ context.Context, in queue.SubmitInput) (string, error) {
	if q.submitErr != nil {
		return "", q.submitErr
	}
	q.submitted = append(q.submitted, in)
	return "job-1", nil
}

func (q *fakeQueue) Status(context.Context, string) (*queue.TaskStatus, error) {
	return nil, errors.New("not implemented")
}

type fakeInline struct {
	runs   []queue.SubmitInput
	result models.StoredAsset
	err    error
}

func (i *fakeInline) Run(_ context.Context, in queue.SubmitInput) (models.StoredAsset, error) {
	if i.err != nil {
		return models.StoredAsset{}, i.err
	}
	i.runs = append(i.runs, in)
	return i.result, nil
}
