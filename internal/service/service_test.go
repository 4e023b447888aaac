package service_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/libradesk/library-backend/config"
	"github.com/libradesk/library-backend/internal/errs"
	"github.com/libradesk/library-backend/internal/model"
	"github.com/libradesk/library-backend/internal/service"
	"github.com/libradesk/library-backend/pkg/auth"
)

// fakeRepo is an in-memory repository. ReserveCopy mirrors the SQL contract:
// lowest-id available copy wins.
type fakeRepo struct {
	users  map[int]model.User
	descs  map[string]model.ItemDescription
	items  map[int]*model.Item
	brws   map[int]*model.Borrow
	fines  map[int]*model.Fine
	events []model.LoanEventRecord

	nextBorrowID int
	nextFineID   int

	failCreateBorrow bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:        make(map[int]model.User),
		descs:        make(map[string]model.ItemDescription),
		items:        make(map[int]*model.Item),
		brws:         make(map[int]*model.Borrow),
		fines:        make(map[int]*model.Fine),
		nextBorrowID: 1,
		nextFineID:   1,
	}
}

func (f *fakeRepo) CreateUser(_ context.Context, _ model.User) error { return nil }

func (f *fakeRepo) GetUserByUsername(_ context.Context, username string) (model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, errs.ErrNotFound
}

func (f *fakeRepo) GetBorrowerByID(_ context.Context, id int) (model.User, error) {
	u, ok := f.users[id]
	if !ok || u.Role != auth.RoleBorrower {
		return model.User{}, errs.ErrNotFound
	}
	return u, nil
}

func (f *fakeRepo) GetBorrowerByUsername(_ context.Context, username string) (model.User, error) {
	for _, u := range f.users {
		if u.Username == username && u.Role == auth.RoleBorrower {
			return u, nil
		}
	}
	return model.User{}, errs.ErrNotFound
}

func (f *fakeRepo) CreateDescription(_ context.Context, desc model.ItemDescription) (model.ItemDescription, error) {
	f.descs[desc.DescriptionUid] = desc
	return desc, nil
}

func (f *fakeRepo) GetDescriptionByUid(_ context.Context, uid string) (model.ItemDescription, error) {
	d, ok := f.descs[uid]
	if !ok {
		return model.ItemDescription{}, errs.ErrNotFound
	}
	return d, nil
}

func (f *fakeRepo) ListDescriptions(_ context.Context) ([]model.ItemDescription, error) {
	return nil, nil
}

func (f *fakeRepo) CreateItem(_ context.Context, descriptionID int) (model.Item, error) {
	id := len(f.items) + 1
	item := &model.Item{ID: id, DescriptionID: descriptionID, Available: true}
	f.items[id] = item
	return *item, nil
}

func (f *fakeRepo) ListItems(_ context.Context, _ int) ([]model.Item, error) { return nil, nil }

func (f *fakeRepo) ReserveCopy(_ context.Context, descriptionID int) (model.Item, error) {
	ids := make([]int, 0, len(f.items))
	for id, item := range f.items {
		if item.DescriptionID == descriptionID && item.Available {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return model.Item{}, errs.ErrNoAvailableCopy
	}
	sort.Ints(ids)
	item := f.items[ids[0]]
	item.Available = false
	return *item, nil
}

func (f *fakeRepo) ReleaseCopy(_ context.Context, itemID int) error {
	if item, ok := f.items[itemID]; ok {
		item.Available = true
	}
	return nil
}

func (f *fakeRepo) CreateBorrow(_ context.Context, borrow model.Borrow) (model.Borrow, error) {
	if f.failCreateBorrow {
		return model.Borrow{}, errors.New("db internal")
	}
	borrow.ID = f.nextBorrowID
	f.nextBorrowID++
	f.brws[borrow.ID] = &borrow
	return borrow, nil
}

func (f *fakeRepo) GetBorrowByUid(_ context.Context, uid string) (model.Borrow, error) {
	for _, b := range f.brws {
		if b.BorrowUid == uid {
			return *b, nil
		}
	}
	return model.Borrow{}, errs.ErrNotFound
}

func (f *fakeRepo) ListBorrowDetails(_ context.Context, borrowerID int) ([]model.BorrowDetail, error) {
	var details []model.BorrowDetail
	for _, b := range f.brws {
		if b.BorrowerID != borrowerID {
			continue
		}
		details = append(details, model.BorrowDetail{
			ID:         b.ID,
			BorrowUid:  b.BorrowUid,
			Status:     b.Status,
			ItemID:     b.ItemID,
			BorrowerID: b.BorrowerID,
		})
	}
	return details, nil
}

func (f *fakeRepo) CloseBorrow(_ context.Context, borrowID, itemID int, returnedOn time.Time) error {
	b, ok := f.brws[borrowID]
	if !ok || b.Status != model.StatusBorrowed {
		return errs.ErrAlreadyReturned
	}
	b.Status = model.StatusReturned
	b.ReturnedOn = &returnedOn
	if item, ok := f.items[itemID]; ok {
		item.Available = true
	}
	return nil
}

func (f *fakeRepo) ListOverdueBorrows(_ context.Context, now time.Time) ([]model.Borrow, error) {
	var overdue []model.Borrow
	for _, b := range f.brws {
		if b.ReturnedOn == nil && b.ReturnDate.Before(now) {
			overdue = append(overdue, *b)
		}
	}
	sort.Slice(overdue, func(i, j int) bool { return overdue[i].ID < overdue[j].ID })
	return overdue, nil
}

func (f *fakeRepo) UpsertFine(_ context.Context, fine model.Fine) (bool, error) {
	if existing, ok := f.fines[fine.BorrowID]; ok {
		if !existing.Paid {
			existing.Amount = fine.Amount
		}
		return false, nil
	}
	fine.ID = f.nextFineID
	f.nextFineID++
	f.fines[fine.BorrowID] = &fine
	return true, nil
}

func (f *fakeRepo) ListFines(_ context.Context) ([]model.FineView, error) { return nil, nil }

func (f *fakeRepo) InsertLoanEvent(_ context.Context, event model.LoanEventRecord) error {
	f.events = append(f.events, event)
	return nil
}

const (
	descUid = "5d9132f4-7542-45b2-9373-4e84b6c7b2d1"
)

func strptr(s string) *string { return &s }

func newTestEnv(t *testing.T) (*fakeRepo, *service.Service) {
	t.Helper()
	repo := newFakeRepo()
	repo.users[1] = model.User{ID: 1, Username: "bilbo", Email: "bilbo@shire.me", FullName: "Bilbo Baggins", Role: auth.RoleBorrower}
	repo.users[2] = model.User{ID: 2, Username: "frodo", Email: "frodo@shire.me", FullName: "Frodo Baggins", Role: auth.RoleBorrower}
	repo.descs[descUid] = model.ItemDescription{
		ID:             1,
		DescriptionUid: descUid,
		Name:           "There and Back Again",
		Kind:           model.KindBook,
		Author:         strptr("B. Baggins"),
	}
	svc := service.NewService(repo, nil, config.Fine{DailyRate: 100, SweepHour: 1}, zap.NewNop())
	return repo, svc
}

func borrowReq(borrowerID int) model.SubmitBorrowRequest {
	return model.SubmitBorrowRequest{
		BorrowerID:     borrowerID,
		DescriptionUid: descUid,
		BorrowDate:     model.Date{Time: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func TestService_SubmitBorrow(t *testing.T) {
	t.Parallel()
	repo, svc := newTestEnv(t)
	repo.items[1] = &model.Item{ID: 1, DescriptionID: 1, Available: true}

	bilbo := auth.Principal{Username: "bilbo", Role: auth.RoleBorrower}
	summary, err := svc.SubmitBorrow(context.Background(), bilbo, borrowReq(1))
	require.NoError(t, err)

	require.False(t, repo.items[1].Available)
	require.Len(t, repo.brws, 1)
	borrow := repo.brws[1]
	require.Equal(t, model.StatusBorrowed, borrow.Status)
	require.Equal(t, 1, borrow.BorrowerID)
	require.Equal(t, 1, borrow.ItemID)
	require.Nil(t, borrow.ReturnedOn)

	require.Equal(t, 1, summary.Item.ID)
	require.Equal(t, "book", summary.Item.Type)
	require.Equal(t, "B. Baggins", summary.Item.Creator)
	require.Equal(t, "Bilbo Baggins", summary.Borrower.FullName)
	// due date defaults to borrowDate + 14 days
	require.Equal(t, borrow.BorrowDate.AddDate(0, 0, 14), borrow.ReturnDate)
}

func TestService_SubmitBorrow_NoAvailableCopy(t *testing.T) {
	t.Parallel()
	repo, svc := newTestEnv(t)

	bilbo := auth.Principal{Username: "bilbo", Role: auth.RoleBorrower}
	_, err := svc.SubmitBorrow(context.Background(), bilbo, borrowReq(1))
	require.ErrorIs(t, err, errs.ErrNoAvailableCopy)
	require.Contains(t, err.Error(), "No available item found for description ID: "+descUid)
	require.Empty(t, repo.brws)
}

func TestService_SubmitBorrow_NotThePrincipal(t *testing.T) {
	t.Parallel()
	repo, svc := newTestEnv(t)
	repo.items[1] = &model.Item{ID: 1, DescriptionID: 1, Available: true}

	frodo := auth.Principal{Username: "frodo", Role: auth.RoleBorrower}
	_, err := svc.SubmitBorrow(context.Background(), frodo, borrowReq(1))
	require.ErrorIs(t, err, errs.ErrForbidden)
	require.True(t, repo.items[1].Available)
	require.Empty(t, repo.brws)
}

func TestService_SubmitBorrow_AllocationDeterminism(t *testing.T) {
	t.Parallel()
	repo, svc := newTestEnv(t)
	repo.items[10] = &model.Item{ID: 10, DescriptionID: 1, Available: true}
	repo.items[11] = &model.Item{ID: 11, DescriptionID: 1, Available: true}

	bilbo := auth.Principal{Username: "bilbo", Role: auth.RoleBorrower}
	first, err := svc.SubmitBorrow(context.Background(), bilbo, borrowReq(1))
	require.NoError(t, err)
	require.Equal(t, 10, first.Item.ID)

	second, err := svc.SubmitBorrow(context.Background(), bilbo, borrowReq(1))
	require.NoError(t, err)
	require.Equal(t, 11, second.Item.ID)
}

func TestService_SubmitBorrow_PersistFailureReleasesCopy(t *testing.T) {
	t.Parallel()
	repo, svc := newTestEnv(t)
	repo.items[1] = &model.Item{ID: 1, DescriptionID: 1, Available: true}
	repo.failCreateBorrow = true

	bilbo := auth.Principal{Username: "bilbo", Role: auth.RoleBorrower}
	_, err := svc.SubmitBorrow(context.Background(), bilbo, borrowReq(1))
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to submit borrow request")
	// the reserved copy must not stay stuck on a failed submission
	require.True(t, repo.items[1].Available)
	require.Empty(t, repo.brws)
}

func TestService_SubmitReturn_RoundTrip(t *testing.T) {
	t.Parallel()
	repo, svc := newTestEnv(t)
	repo.items[1] = &model.Item{ID: 1, DescriptionID: 1, Available: true}

	bilbo := auth.Principal{Username: "bilbo", Role: auth.RoleBorrower}
	summary, err := svc.SubmitBorrow(context.Background(), bilbo, borrowReq(1))
	require.NoError(t, err)
	require.False(t, repo.items[1].Available)

	require.NoError(t, svc.SubmitReturn(context.Background(), bilbo, summary.ID))

	require.True(t, repo.items[1].Available)
	require.Len(t, repo.brws, 1)
	borrow := repo.brws[1]
	require.Equal(t, model.StatusReturned, borrow.Status)
	require.NotNil(t, borrow.ReturnedOn)
}

func TestService_SubmitReturn_NotOwner(t *testing.T) {
	t.Parallel()
	repo, svc := newTestEnv(t)
	repo.items[1] = &model.Item{ID: 1, DescriptionID: 1, Available: true}

	bilbo := auth.Principal{Username: "bilbo", Role: auth.RoleBorrower}
	summary, err := svc.SubmitBorrow(context.Background(), bilbo, borrowReq(1))
	require.NoError(t, err)

	frodo := auth.Principal{Username: "frodo", Role: auth.RoleBorrower}
	err = svc.SubmitReturn(context.Background(), frodo, summary.ID)
	require.ErrorIs(t, err, errs.ErrForbidden)
	require.False(t, repo.items[1].Available)
	require.Equal(t, model.StatusBorrowed, repo.brws[1].Status)
}

func TestService_SubmitReturn_AlreadyReturned(t *testing.T) {
	t.Parallel()
	repo, svc := newTestEnv(t)
	repo.items[1] = &model.Item{ID: 1, DescriptionID: 1, Available: true}

	bilbo := auth.Principal{Username: "bilbo", Role: auth.RoleBorrower}
	summary, err := svc.SubmitBorrow(context.Background(), bilbo, borrowReq(1))
	require.NoError(t, err)
	require.NoError(t, svc.SubmitReturn(context.Background(), bilbo, summary.ID))

	// second return is rejected and must not touch availability again
	repo.items[1].Available = false
	err = svc.SubmitReturn(context.Background(), bilbo, summary.ID)
	require.ErrorIs(t, err, errs.ErrAlreadyReturned)
	require.False(t, repo.items[1].Available)
}

func TestService_RunFineSweep(t *testing.T) {
	t.Parallel()
	repo, svc := newTestEnv(t)

	now := time.Date(2024, 5, 20, 1, 0, 0, 0, time.UTC)
	repo.brws[1] = &model.Borrow{
		ID:         1,
		BorrowUid:  "0b7e8e2c-33d0-4b43-8a72-4c4f9a05c1c7",
		BorrowerID: 1,
		ItemID:     1,
		ReturnDate: now.AddDate(0, 0, -3),
		Status:     model.StatusBorrowed,
	}

	res, err := svc.RunFineSweep(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, model.SweepResult{Scanned: 1, Created: 1}, res)

	fine := repo.fines[1]
	require.NotNil(t, fine)
	require.Equal(t, int64(300), fine.Amount)
	require.False(t, fine.Paid)
	require.Equal(t, 1, fine.BorrowerID)
}

func TestService_RunFineSweep_IdempotentPerRun(t *testing.T) {
	t.Parallel()
	repo, svc := newTestEnv(t)

	now := time.Date(2024, 5, 20, 1, 0, 0, 0, time.UTC)
	repo.brws[1] = &model.Borrow{
		ID:         1,
		BorrowerID: 1,
		ItemID:     1,
		ReturnDate: now.AddDate(0, 0, -3),
		Status:     model.StatusBorrowed,
	}

	_, err := svc.RunFineSweep(context.Background(), now)
	require.NoError(t, err)
	res, err := svc.RunFineSweep(context.Background(), now)
	require.NoError(t, err)

	require.Equal(t, model.SweepResult{Scanned: 1, Updated: 1}, res)
	require.Len(t, repo.fines, 1)
	require.Equal(t, int64(300), repo.fines[1].Amount)
}

func TestService_RunFineSweep_PaidFineKeepsAmount(t *testing.T) {
	t.Parallel()
	repo, svc := newTestEnv(t)

	now := time.Date(2024, 5, 20, 1, 0, 0, 0, time.UTC)
	repo.brws[1] = &model.Borrow{
		ID:         1,
		BorrowerID: 1,
		ItemID:     1,
		ReturnDate: now.AddDate(0, 0, -3),
		Status:     model.StatusBorrowed,
	}

	_, err := svc.RunFineSweep(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, int64(300), repo.fines[1].Amount)
	repo.fines[1].Paid = true

	// a settled fine keeps its amount even as the loan stays overdue
	_, err = svc.RunFineSweep(context.Background(), now.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.Len(t, repo.fines, 1)
	require.Equal(t, int64(300), repo.fines[1].Amount)
	require.True(t, repo.fines[1].Paid)
}

func TestService_RunFineSweep_PartialDayTruncated(t *testing.T) {
	t.Parallel()
	repo, svc := newTestEnv(t)

	now := time.Date(2024, 5, 20, 1, 0, 0, 0, time.UTC)
	// overdue by 25 hours counts as one whole day
	repo.brws[1] = &model.Borrow{
		ID:         1,
		BorrowerID: 1,
		ItemID:     1,
		ReturnDate: now.Add(-25 * time.Hour),
		Status:     model.StatusBorrowed,
	}

	_, err := svc.RunFineSweep(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, int64(100), repo.fines[1].Amount)
}

func TestService_RunFineSweep_SkipsReturnedAndCurrent(t *testing.T) {
	t.Parallel()
	repo, svc := newTestEnv(t)

	now := time.Date(2024, 5, 20, 1, 0, 0, 0, time.UTC)
	returnedOn := now.AddDate(0, 0, -1)
	repo.brws[1] = &model.Borrow{
		ID: 1, BorrowerID: 1, ItemID: 1,
		ReturnDate: now.AddDate(0, 0, -3),
		ReturnedOn: &returnedOn,
		Status:     model.StatusReturned,
	}
	repo.brws[2] = &model.Borrow{
		ID: 2, BorrowerID: 1, ItemID: 2,
		ReturnDate: now.AddDate(0, 0, 7),
		Status:     model.StatusBorrowed,
	}

	res, err := svc.RunFineSweep(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, model.SweepResult{}, res)
	require.Empty(t, repo.fines)
}
