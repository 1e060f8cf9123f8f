package service

import (
	"fmt"
	"sync"
	"time"

	"slicecraft/internal/apperr"
	"slicecraft/models"
	"slicecraft/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:  logger.LevelError,
		Format: "text",
		Output: "stdout",
	})
}

// fakeOrderRepo keeps orders in memory with the same edge behavior as the
// SQL repository: pending lookups 404 when empty and MarkPlaced only moves
// orders that are still pending.
type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*models.Order
	seq    int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*models.Order)}
}

func cloneOrder(o *models.Order) *models.Order {
	cp := *o
	cp.Items = append([]models.OrderItem(nil), o.Items...)
	return &cp
}

func (f *fakeOrderRepo) Create(order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	order.ID = fmt.Sprintf("order-%d", f.seq)
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	f.orders[order.ID] = cloneOrder(order)
	return nil
}

func (f *fakeOrderRepo) GetByID(id string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, apperr.NotFound("order with id %s not found", id)
	}
	return cloneOrder(o), nil
}

func (f *fakeOrderRepo) GetPendingByUser(userID string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.UserID == userID && o.Status == models.StatusPending {
			return cloneOrder(o), nil
		}
	}
	return nil, apperr.NotFound("no active cart found")
}

func (f *fakeOrderRepo) GetByUser(userID string) ([]*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, cloneOrder(o))
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) GetAll() ([]*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Order
	for _, o := range f.orders {
		out = append(out, cloneOrder(o))
	}
	return out, nil
}

func (f *fakeOrderRepo) AddItem(orderID string, item *models.OrderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok {
		return apperr.NotFound("order with id %s not found", orderID)
	}
	o.Items = append(o.Items, *item)
	return nil
}

func (f *fakeOrderRepo) UpdateTotal(orderID string, total float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok {
		return apperr.NotFound("order with id %s not found", orderID)
	}
	o.TotalAmount = total
	return nil
}

func (f *fakeOrderRepo) MarkPlaced(id string, addr models.DeliveryAddress, screenshot string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok || o.Status != models.StatusPending {
		return apperr.NotFound("pending order with id %s not found", id)
	}
	o.Status = models.StatusReceived
	o.DeliveryAddress = addr
	o.TransferScreenshot = screenshot
	return nil
}

func (f *fakeOrderRepo) UpdateStatus(id, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return apperr.NotFound("order with id %s not found", id)
	}
	o.Status = status
	return nil
}

func (f *fakeOrderRepo) SetPaymentID(id, paymentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return apperr.NotFound("order with id %s not found", id)
	}
	o.PaymentID = paymentID
	return nil
}

func (f *fakeOrderRepo) MarkPaymentCompleted(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return apperr.NotFound("order with id %s not found", id)
	}
	o.PaymentStatus = models.PaymentCompleted
	o.Status = models.StatusReceived
	return nil
}

func (f *fakeOrderRepo) Delete(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orders[id]; !ok {
		return apperr.NotFound("order with id %s not found", id)
	}
	delete(f.orders, id)
	return nil
}

type fakePizzaRepo struct {
	pizzas map[string]*models.Pizza
}

func newFakePizzaRepo(pizzas ...*models.Pizza) *fakePizzaRepo {
	f := &fakePizzaRepo{pizzas: make(map[string]*models.Pizza)}
	for _, p := range pizzas {
		f.pizzas[p.ID] = p
	}
	return f
}

func (f *fakePizzaRepo) GetAll() ([]*models.Pizza, error) {
	var out []*models.Pizza
	for _, p := range f.pizzas {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePizzaRepo) GetByID(id string) (*models.Pizza, error) {
	p, ok := f.pizzas[id]
	if !ok {
		return nil, apperr.NotFound("pizza with id %s not found", id)
	}
	return p, nil
}

type fakeInventoryRepo struct {
	mu    sync.Mutex
	items map[string]*models.StockItem // keyed by id
	seq   int
}

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{items: make(map[string]*models.StockItem)}
}

func (f *fakeInventoryRepo) seed(itemType models.StockType, name string, quantity, threshold float64) *models.StockItem {
	item := &models.StockItem{ItemType: itemType, Name: name, Quantity: quantity, Threshold: threshold, Unit: "units"}
	if err := f.Add(item); err != nil {
		panic(err)
	}
	return item
}

func (f *fakeInventoryRepo) quantityOf(itemType models.StockType, name string) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range f.items {
		if item.ItemType == itemType && item.Name == name {
			return item.Quantity
		}
	}
	return -1
}

func (f *fakeInventoryRepo) GetAll() ([]*models.StockItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.StockItem
	for _, item := range f.items {
		cp := *item
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeInventoryRepo) GetByID(id string) (*models.StockItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return nil, apperr.NotFound("inventory item with id %s not found", id)
	}
	cp := *item
	return &cp, nil
}

func (f *fakeInventoryRepo) GetByType(itemType models.StockType) ([]*models.StockItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.StockItem
	for _, item := range f.items {
		if item.ItemType == itemType && item.Quantity > 0 {
			cp := *item
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeInventoryRepo) Add(item *models.StockItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.items {
		if existing.ItemType == item.ItemType && existing.Name == item.Name {
			return apperr.Conflict("inventory item %s/%s already exists", item.ItemType, item.Name)
		}
	}
	f.seq++
	item.ID = fmt.Sprintf("stock-%d", f.seq)
	cp := *item
	f.items[item.ID] = &cp
	return nil
}

func (f *fakeInventoryRepo) Update(id string, quantity, threshold float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return apperr.NotFound("inventory item with id %s not found", id)
	}
	item.Quantity = quantity
	item.Threshold = threshold
	item.LastRestocked = time.Now()
	return nil
}

func (f *fakeInventoryRepo) Delete(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return apperr.NotFound("inventory item with id %s not found", id)
	}
	delete(f.items, id)
	return nil
}

func (f *fakeInventoryRepo) Decrement(itemType models.StockType, name string, amount float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range f.items {
		if item.ItemType == itemType && item.Name == name {
			item.Quantity -= amount
			return nil
		}
	}
	// Missing rows are a no-op, same as the SQL UPDATE.
	return nil
}

func (f *fakeInventoryRepo) GetLowStock() ([]*models.StockItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.StockItem
	for _, item := range f.items {
		if item.IsLow() {
			cp := *item
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
	seq   int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) Create(user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return apperr.Conflict("user with email %s already exists", user.Email)
		}
	}
	f.seq++
	user.ID = fmt.Sprintf("user-%d", f.seq)
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("user with id %s not found", id)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("user with email %s not found", email)
}

func (f *fakeUserRepo) GetByResetToken(token string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ResetPasswordToken == token && u.ResetPasswordExpires != nil && u.ResetPasswordExpires.After(time.Now()) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("reset token not found")
}

func (f *fakeUserRepo) GetAll() ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.User
	for _, u := range f.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeUserRepo) EmailTakenByOther(email, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email && u.ID != userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) UpdateProfile(id string, name, email, profilePhoto string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return apperr.NotFound("user with id %s not found", id)
	}
	if name != "" {
		u.Name = name
	}
	if email != "" {
		u.Email = email
	}
	if profilePhoto != "" {
		u.ProfilePhoto = profilePhoto
	}
	return nil
}

func (f *fakeUserRepo) UpdatePassword(id, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return apperr.NotFound("user with id %s not found", id)
	}
	u.PasswordHash = passwordHash
	return nil
}

func (f *fakeUserRepo) SetResetToken(id, token string, expires time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return apperr.NotFound("user with id %s not found", id)
	}
	u.ResetPasswordToken = token
	u.ResetPasswordExpires = &expires
	return nil
}

func (f *fakeUserRepo) ClearResetToken(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return apperr.NotFound("user with id %s not found", id)
	}
	u.ResetPasswordToken = ""
	u.ResetPasswordExpires = nil
	return nil
}

func (f *fakeUserRepo) UpdateRole(id string, role models.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return apperr.NotFound("user with id %s not found", id)
	}
	u.Role = role
	return nil
}

func (f *fakeUserRepo) Delete(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return apperr.NotFound("user with id %s not found", id)
	}
	delete(f.users, id)
	return nil
}

type fakeSubscriptionRepo struct {
	mu   sync.Mutex
	subs map[string]*models.Subscription
	seq  int
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{subs: make(map[string]*models.Subscription)}
}

func (f *fakeSubscriptionRepo) GetAll() ([]*models.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Subscription
	for _, s := range f.subs {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeSubscriptionRepo) Add(sub *models.Subscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.subs {
		if existing.Email == sub.Email {
			return apperr.Conflict("email %s is already subscribed", sub.Email)
		}
	}
	f.seq++
	sub.ID = fmt.Sprintf("sub-%d", f.seq)
	sub.SubscribedAt = time.Now()
	cp := *sub
	f.subs[sub.ID] = &cp
	return nil
}

func (f *fakeSubscriptionRepo) Delete(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.subs[id]; !ok {
		return apperr.NotFound("subscription with id %s not found", id)
	}
	delete(f.subs, id)
	return nil
}

type statusMail struct {
	To      string
	OrderID string
	Status  string
}

// fakeMailer records outgoing mail. Safe for the goroutines the services
// dispatch notifications on.
type fakeMailer struct {
	mu              sync.Mutex
	lowStockBatches [][]*models.StockItem
	statusMails     []statusMail
	resetMails      []string
	failAll         bool
}

func (m *fakeMailer) SendLowStockAlert(items []*models.StockItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return fmt.Errorf("smtp unavailable")
	}
	m.lowStockBatches = append(m.lowStockBatches, items)
	return nil
}

func (m *fakeMailer) SendStatusUpdate(toEmail, orderID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return fmt.Errorf("smtp unavailable")
	}
	m.statusMails = append(m.statusMails, statusMail{To: toEmail, OrderID: orderID, Status: status})
	return nil
}

func (m *fakeMailer) SendPasswordReset(toEmail, resetURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return fmt.Errorf("smtp unavailable")
	}
	m.resetMails = append(m.resetMails, resetURL)
	return nil
}

func (m *fakeMailer) lowStockBatchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lowStockBatches)
}

func (m *fakeMailer) lastLowStockBatch() []*models.StockItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.lowStockBatches) == 0 {
		return nil
	}
	return m.lowStockBatches[len(m.lowStockBatches)-1]
}

func (m *fakeMailer) statusMailCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.statusMails)
}

func (m *fakeMailer) lastStatusMail() statusMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.statusMails) == 0 {
		return statusMail{}
	}
	return m.statusMails[len(m.statusMails)-1]
}

func (m *fakeMailer) resetMailCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.resetMails)
}

func (m *fakeMailer) lastResetMail() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.resetMails) == 0 {
		return ""
	}
	return m.resetMails[len(m.resetMails)-1]
}
