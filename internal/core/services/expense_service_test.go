package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/expensehub/expense_approval_app/internal/apperrors"
	"github.com/expensehub/expense_approval_app/internal/core/domain"
	portsrepo "github.com/expensehub/expense_approval_app/internal/core/ports/repositories"
	portssvc "github.com/expensehub/expense_approval_app/internal/core/ports/services"
	"github.com/expensehub/expense_approval_app/internal/core/services"
	"github.com/expensehub/expense_approval_app/internal/dto"
)

// --- Mock ExpenseRepository ---
type MockExpenseRepository struct {
	mock.Mock
	FindExpenseByIDFn       func(ctx context.Context, expenseID string) (*domain.Expense, error)
	FindExpensesFn          func(ctx context.Context, filter portsrepo.ExpenseFilter) ([]domain.Expense, error)
	SaveExpenseFn           func(ctx context.Context, expense domain.Expense) error
	UpdateExpenseStatusFn   func(ctx context.Context, expenseID string, expectedVersion int64, newStatus domain.ExpenseStatus, entry domain.HistoryItem) error
	UpdateExpensePriorityFn func(ctx context.Context, expenseID string, expectedVersion int64, isHighPriority bool) error
}

func (m *MockExpenseRepository) FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	if m.FindExpenseByIDFn != nil {
		return m.FindExpenseByIDFn(ctx, expenseID)
	}
	args := m.Called(ctx, expenseID)
	var expense *domain.Expense
	if args.Get(0) != nil {
		expense = args.Get(0).(*domain.Expense)
	}
	return expense, args.Error(1)
}

func (m *MockExpenseRepository) FindExpenses(ctx context.Context, filter portsrepo.ExpenseFilter) ([]domain.Expense, error) {
	if m.FindExpensesFn != nil {
		return m.FindExpensesFn(ctx, filter)
	}
	args := m.Called(ctx, filter)
	var expenses []domain.Expense
	if args.Get(0) != nil {
		expenses = args.Get(0).([]domain.Expense)
	}
	return expenses, args.Error(1)
}

func (m *MockExpenseRepository) SaveExpense(ctx context.Context, expense domain.Expense) error {
	if m.SaveExpenseFn != nil {
		return m.SaveExpenseFn(ctx, expense)
	}
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *MockExpenseRepository) UpdateExpenseStatus(ctx context.Context, expenseID string, expectedVersion int64, newStatus domain.ExpenseStatus, entry domain.HistoryItem) error {
	if m.UpdateExpenseStatusFn != nil {
		return m.UpdateExpenseStatusFn(ctx, expenseID, expectedVersion, newStatus, entry)
	}
	args := m.Called(ctx, expenseID, expectedVersion, newStatus, entry)
	return args.Error(0)
}

func (m *MockExpenseRepository) UpdateExpensePriority(ctx context.Context, expenseID string, expectedVersion int64, isHighPriority bool) error {
	if m.UpdateExpensePriorityFn != nil {
		return m.UpdateExpensePriorityFn(ctx, expenseID, expectedVersion, isHighPriority)
	}
	args := m.Called(ctx, expenseID, expectedVersion, isHighPriority)
	return args.Error(0)
}

// --- Mock CategoryReader ---
type MockCategoryReader struct {
	mock.Mock
	FindCategoryByIDFn func(ctx context.Context, categoryID string) (*domain.Category, error)
}

func (m *MockCategoryReader) FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	if m.FindCategoryByIDFn != nil {
		return m.FindCategoryByIDFn(ctx, categoryID)
	}
	args := m.Called(ctx, categoryID)
	var category *domain.Category
	if args.Get(0) != nil {
		category = args.Get(0).(*domain.Category)
	}
	return category, args.Error(1)
}

func (m *MockCategoryReader) FindCategories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	var categories []domain.Category
	if args.Get(0) != nil {
		categories = args.Get(0).([]domain.Category)
	}
	return categories, args.Error(1)
}

// --- Mock ProjectRepository ---
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) FindProjectByID(ctx context.Context, projectID string) (*domain.Project, error) {
	args := m.Called(ctx, projectID)
	var project *domain.Project
	if args.Get(0) != nil {
		project = args.Get(0).(*domain.Project)
	}
	return project, args.Error(1)
}

func (m *MockProjectRepository) FindProjects(ctx context.Context) ([]domain.Project, error) {
	args := m.Called(ctx)
	var projects []domain.Project
	if args.Get(0) != nil {
		projects = args.Get(0).([]domain.Project)
	}
	return projects, args.Error(1)
}

func (m *MockProjectRepository) SaveProject(ctx context.Context, project domain.Project) error {
	return m.Called(ctx, project).Error(0)
}

func (m *MockProjectRepository) UpdateProject(ctx context.Context, project domain.Project) error {
	return m.Called(ctx, project).Error(0)
}

func (m *MockProjectRepository) DeleteProject(ctx context.Context, projectID string) error {
	return m.Called(ctx, projectID).Error(0)
}

// --- Mock SiteRepository ---
type MockSiteRepository struct {
	mock.Mock
}

func (m *MockSiteRepository) FindSiteByID(ctx context.Context, siteID string) (*domain.Site, error) {
	args := m.Called(ctx, siteID)
	var site *domain.Site
	if args.Get(0) != nil {
		site = args.Get(0).(*domain.Site)
	}
	return site, args.Error(1)
}

func (m *MockSiteRepository) FindSites(ctx context.Context) ([]domain.Site, error) {
	args := m.Called(ctx)
	var sites []domain.Site
	if args.Get(0) != nil {
		sites = args.Get(0).([]domain.Site)
	}
	return sites, args.Error(1)
}

func (m *MockSiteRepository) SaveSite(ctx context.Context, site domain.Site) error {
	return m.Called(ctx, site).Error(0)
}

func (m *MockSiteRepository) UpdateSite(ctx context.Context, site domain.Site) error {
	return m.Called(ctx, site).Error(0)
}

func (m *MockSiteRepository) DeleteSite(ctx context.Context, siteID string) error {
	return m.Called(ctx, siteID).Error(0)
}

// --- Mock UserReaderSvc ---
type MockUserReaderSvc struct {
	mock.Mock
	GetUserByIDFn     func(ctx context.Context, userID string) (*domain.User, error)
	ListUsersByRoleFn func(ctx context.Context, role domain.Role) ([]domain.User, error)
}

func (m *MockUserReaderSvc) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	if m.GetUserByIDFn != nil {
		return m.GetUserByIDFn(ctx, userID)
	}
	args := m.Called(ctx, userID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserReaderSvc) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserReaderSvc) ListUsers(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	var users []domain.User
	if args.Get(0) != nil {
		users = args.Get(0).([]domain.User)
	}
	return users, args.Error(1)
}

func (m *MockUserReaderSvc) ListUsersByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	if m.ListUsersByRoleFn != nil {
		return m.ListUsersByRoleFn(ctx, role)
	}
	args := m.Called(ctx, role)
	var users []domain.User
	if args.Get(0) != nil {
		users = args.Get(0).([]domain.User)
	}
	return users, args.Error(1)
}

// --- Mock AuditSvc ---
type MockAuditSvc struct {
	mock.Mock
	RecordFn func(ctx context.Context, actor domain.Actor, action string, details string) error
}

func (m *MockAuditSvc) Record(ctx context.Context, actor domain.Actor, action string, details string) error {
	if m.RecordFn != nil {
		return m.RecordFn(ctx, actor, action, details)
	}
	args := m.Called(ctx, actor, action, details)
	return args.Error(0)
}

func (m *MockAuditSvc) List(ctx context.Context, limit int) ([]domain.AuditLogItem, error) {
	args := m.Called(ctx, limit)
	var items []domain.AuditLogItem
	if args.Get(0) != nil {
		items = args.Get(0).([]domain.AuditLogItem)
	}
	return items, args.Error(1)
}

// --- Mock NotificationSink ---
type MockNotificationSink struct {
	mock.Mock
	NotifyFn func(ctx context.Context, recipients []domain.User, n portssvc.Notification) error
}

func (m *MockNotificationSink) Notify(ctx context.Context, recipients []domain.User, n portssvc.Notification) error {
	if m.NotifyFn != nil {
		return m.NotifyFn(ctx, recipients, n)
	}
	args := m.Called(ctx, recipients, n)
	return args.Error(0)
}

// --- Mock AttachmentStore ---
type MockAttachmentStore struct {
	mock.Mock
	PutFn func(ctx context.Context, name string, mimeType string, data []byte) (string, error)
}

func (m *MockAttachmentStore) Put(ctx context.Context, name string, mimeType string, data []byte) (string, error) {
	if m.PutFn != nil {
		return m.PutFn(ctx, name, mimeType, data)
	}
	args := m.Called(ctx, name, mimeType, data)
	return args.String(0), args.Error(1)
}

func (m *MockAttachmentStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	var data []byte
	if args.Get(0) != nil {
		data = args.Get(0).([]byte)
	}
	return data, args.Error(1)
}

// --- Test Suite ---
type ExpenseServiceTestSuite struct {
	suite.Suite
	mockExpenseRepo  *MockExpenseRepository
	mockCategoryRepo *MockCategoryReader
	mockProjectRepo  *MockProjectRepository
	mockSiteRepo     *MockSiteRepository
	mockUserSvc      *MockUserReaderSvc
	mockAuditSvc     *MockAuditSvc
	mockNotifier     *MockNotificationSink
	mockAttachments  *MockAttachmentStore
	service          portssvc.ExpenseSvcFacade
}

func (suite *ExpenseServiceTestSuite) SetupTest() {
	suite.mockExpenseRepo = new(MockExpenseRepository)
	suite.mockCategoryRepo = new(MockCategoryReader)
	suite.mockProjectRepo = new(MockProjectRepository)
	suite.mockSiteRepo = new(MockSiteRepository)
	suite.mockUserSvc = new(MockUserReaderSvc)
	suite.mockAuditSvc = new(MockAuditSvc)
	suite.mockNotifier = new(MockNotificationSink)
	suite.mockAttachments = new(MockAttachmentStore)
	suite.service = services.NewExpenseService(
		suite.mockExpenseRepo,
		suite.mockCategoryRepo,
		suite.mockProjectRepo,
		suite.mockSiteRepo,
		suite.mockUserSvc,
		suite.mockAuditSvc,
		suite.mockNotifier,
		suite.mockAttachments,
		services.PolicyEngine{},
	)
}

func (suite *ExpenseServiceTestSuite) withPolicy(policy services.PolicyEngine) {
	suite.service = services.NewExpenseService(
		suite.mockExpenseRepo,
		suite.mockCategoryRepo,
		suite.mockProjectRepo,
		suite.mockSiteRepo,
		suite.mockUserSvc,
		suite.mockAuditSvc,
		suite.mockNotifier,
		suite.mockAttachments,
		policy,
	)
}

func testActor(role domain.Role) domain.Actor {
	return domain.Actor{UserID: uuid.NewString(), Name: "Test " + string(role), Role: role}
}

// expectReferences wires the happy-path reference lookups for a submission.
func (suite *ExpenseServiceTestSuite) expectReferences(ctx context.Context, category *domain.Category, projectID, siteID string) {
	suite.mockCategoryRepo.FindCategoryByIDFn = func(ctx context.Context, categoryID string) (*domain.Category, error) {
		return category, nil
	}
	suite.mockProjectRepo.On("FindProjectByID", ctx, projectID).Return(&domain.Project{ProjectID: projectID, Name: "Bridge"}, nil)
	suite.mockSiteRepo.On("FindSiteByID", ctx, siteID).Return(&domain.Site{SiteID: siteID, Name: "North Yard"}, nil)
}

// expectNotifications stubs the best-effort fan-out after a mutation.
func (suite *ExpenseServiceTestSuite) expectNotifications(requestor domain.Actor) {
	if suite.mockCategoryRepo.FindCategoryByIDFn == nil {
		suite.mockCategoryRepo.FindCategoryByIDFn = func(ctx context.Context, categoryID string) (*domain.Category, error) {
			return &domain.Category{CategoryID: categoryID, Name: "Travel"}, nil
		}
	}
	suite.mockUserSvc.GetUserByIDFn = func(ctx context.Context, userID string) (*domain.User, error) {
		return &domain.User{UserID: userID, Name: requestor.Name, Email: "requestor@example.com"}, nil
	}
	suite.mockUserSvc.ListUsersByRoleFn = func(ctx context.Context, role domain.Role) ([]domain.User, error) {
		return []domain.User{{UserID: "v1", Name: "Verna", Role: role}}, nil
	}
	suite.mockNotifier.NotifyFn = func(ctx context.Context, recipients []domain.User, n portssvc.Notification) error {
		return nil
	}
}

// --- CreateExpense Tests ---

func (suite *ExpenseServiceTestSuite) TestCreateExpense_Success() {
	ctx := context.Background()
	requestor := testActor(domain.RoleRequestor)
	category := &domain.Category{CategoryID: uuid.NewString(), Name: "Travel", AutoApproveAmount: decimal.Zero}
	req := dto.CreateExpenseRequest{
		CategoryID:  category.CategoryID,
		ProjectID:   uuid.NewString(),
		SiteID:      uuid.NewString(),
		Amount:      decimal.RequireFromString("1250.00"),
		Description: "Client site visit",
	}

	suite.expectReferences(ctx, category, req.ProjectID, req.SiteID)
	suite.expectNotifications(requestor)

	var saved domain.Expense
	suite.mockExpenseRepo.SaveExpenseFn = func(ctx context.Context, expense domain.Expense) error {
		saved = expense
		return nil
	}

	expense, err := suite.service.CreateExpense(ctx, req, requestor)

	suite.Require().NoError(err)
	suite.Require().NotNil(expense)
	suite.Equal(domain.StatusPendingVerification, expense.Status)
	suite.Equal(requestor.UserID, expense.RequestorID)
	suite.Equal(requestor.Name, expense.RequestorName)
	suite.EqualValues(1, expense.Version)
	suite.NotEmpty(expense.ExpenseID)
	suite.NotEmpty(expense.ReferenceNumber)

	suite.Require().Len(expense.History, 1)
	suite.Equal(domain.ActionSubmitted, expense.History[0].Action)
	suite.Equal(requestor.UserID, expense.History[0].ActorID)

	// The persisted aggregate is already self-consistent.
	suite.Equal(expense.ExpenseID, saved.ExpenseID)
	suite.Equal(domain.StatusPendingVerification, saved.Status)
	suite.Len(saved.History, 1)
}

func (suite *ExpenseServiceTestSuite) TestCreateExpense_AutoApproved() {
	ctx := context.Background()
	requestor := testActor(domain.RoleRequestor)
	category := &domain.Category{
		CategoryID:        uuid.NewString(),
		Name:              "Office Supplies",
		AutoApproveAmount: decimal.RequireFromString("500"),
	}
	req := dto.CreateExpenseRequest{
		CategoryID:  category.CategoryID,
		ProjectID:   uuid.NewString(),
		SiteID:      uuid.NewString(),
		Amount:      decimal.RequireFromString("500.00"), // threshold is inclusive
		Description: "Printer toner",
	}

	suite.expectReferences(ctx, category, req.ProjectID, req.SiteID)
	suite.expectNotifications(requestor)
	suite.mockExpenseRepo.SaveExpenseFn = func(ctx context.Context, expense domain.Expense) error { return nil }

	var auditAction, auditDetails string
	suite.mockAuditSvc.RecordFn = func(ctx context.Context, actor domain.Actor, action, details string) error {
		auditAction, auditDetails = action, details
		suite.Equal(domain.SystemActor, actor)
		return nil
	}

	expense, err := suite.service.CreateExpense(ctx, req, requestor)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusApproved, expense.Status)
	suite.Require().Len(expense.History, 2)
	suite.Equal(domain.ActionSubmitted, expense.History[0].Action)
	suite.Equal(domain.ActionAutoApproved, expense.History[1].Action)
	suite.Equal(domain.SystemActor.UserID, expense.History[1].ActorID)
	suite.Equal("Amount is within auto-approval limit of ₹500.", expense.History[1].Comment)

	suite.Equal("Auto-Approved Expense", auditAction)
	suite.Contains(auditDetails, expense.ReferenceNumber)
}

func (suite *ExpenseServiceTestSuite) TestCreateExpense_AutoApprovalAuditFailureIsNonFatal() {
	ctx := context.Background()
	requestor := testActor(domain.RoleRequestor)
	category := &domain.Category{
		CategoryID:        uuid.NewString(),
		Name:              "Office Supplies",
		AutoApproveAmount: decimal.RequireFromString("500"),
	}
	req := dto.CreateExpenseRequest{
		CategoryID:  category.CategoryID,
		ProjectID:   uuid.NewString(),
		SiteID:      uuid.NewString(),
		Amount:      decimal.RequireFromString("10"),
		Description: "Pens",
	}

	suite.expectReferences(ctx, category, req.ProjectID, req.SiteID)
	suite.expectNotifications(requestor)
	suite.mockExpenseRepo.SaveExpenseFn = func(ctx context.Context, expense domain.Expense) error { return nil }
	suite.mockAuditSvc.RecordFn = func(ctx context.Context, actor domain.Actor, action, details string) error {
		return assert.AnError
	}

	expense, err := suite.service.CreateExpense(ctx, req, requestor)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusApproved, expense.Status)
}

func (suite *ExpenseServiceTestSuite) TestCreateExpense_NegativeAmount() {
	ctx := context.Background()
	req := dto.CreateExpenseRequest{
		CategoryID:  uuid.NewString(),
		ProjectID:   uuid.NewString(),
		SiteID:      uuid.NewString(),
		Amount:      decimal.RequireFromString("-1"),
		Description: "Refund gone wrong",
	}

	expense, err := suite.service.CreateExpense(ctx, req, testActor(domain.RoleRequestor))

	suite.Require().Error(err)
	suite.Nil(expense)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ExpenseServiceTestSuite) TestCreateExpense_UnknownCategory() {
	ctx := context.Background()
	req := dto.CreateExpenseRequest{
		CategoryID:  uuid.NewString(),
		ProjectID:   uuid.NewString(),
		SiteID:      uuid.NewString(),
		Amount:      decimal.RequireFromString("10"),
		Description: "Misc",
	}

	suite.mockCategoryRepo.On("FindCategoryByID", ctx, req.CategoryID).Return(nil, apperrors.ErrNotFound).Once()

	expense, err := suite.service.CreateExpense(ctx, req, testActor(domain.RoleRequestor))

	suite.Require().Error(err)
	suite.Nil(expense)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockCategoryRepo.AssertExpectations(suite.T())
}

func (suite *ExpenseServiceTestSuite) TestCreateExpense_SubcategoryFromOtherCategory() {
	ctx := context.Background()
	category := &domain.Category{CategoryID: uuid.NewString(), Name: "Travel"}
	req := dto.CreateExpenseRequest{
		CategoryID:    category.CategoryID,
		SubcategoryID: uuid.NewString(),
		ProjectID:     uuid.NewString(),
		SiteID:        uuid.NewString(),
		Amount:        decimal.RequireFromString("10"),
		Description:   "Taxi",
	}

	suite.mockCategoryRepo.On("FindCategoryByID", ctx, category.CategoryID).Return(category, nil).Once()

	expense, err := suite.service.CreateExpense(ctx, req, testActor(domain.RoleRequestor))

	suite.Require().Error(err)
	suite.Nil(expense)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ExpenseServiceTestSuite) TestCreateExpense_MissingRequiredAttachment() {
	ctx := context.Background()
	category := &domain.Category{CategoryID: uuid.NewString(), Name: "Travel", AttachmentRequired: true}
	req := dto.CreateExpenseRequest{
		CategoryID:  category.CategoryID,
		ProjectID:   uuid.NewString(),
		SiteID:      uuid.NewString(),
		Amount:      decimal.RequireFromString("10"),
		Description: "Taxi",
	}

	suite.expectReferences(ctx, category, req.ProjectID, req.SiteID)

	expense, err := suite.service.CreateExpense(ctx, req, testActor(domain.RoleRequestor))

	suite.Require().Error(err)
	suite.Nil(expense)
	suite.ErrorIs(err, apperrors.ErrPolicyViolation)
	// Policy failure gates the submission: nothing was stored or saved.
	suite.mockAttachments.AssertNotCalled(suite.T(), "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockExpenseRepo.AssertNotCalled(suite.T(), "SaveExpense", mock.Anything, mock.Anything)
}

func (suite *ExpenseServiceTestSuite) TestCreateExpense_StoresAttachment() {
	ctx := context.Background()
	requestor := testActor(domain.RoleRequestor)
	category := &domain.Category{CategoryID: uuid.NewString(), Name: "Travel", AttachmentRequired: true}
	req := dto.CreateExpenseRequest{
		CategoryID:  category.CategoryID,
		ProjectID:   uuid.NewString(),
		SiteID:      uuid.NewString(),
		Amount:      decimal.RequireFromString("99.50"),
		Description: "Taxi",
		Attachment:  &dto.AttachmentUpload{Name: "receipt.pdf", MimeType: "application/pdf", Data: []byte("pdf-bytes")},
	}

	suite.expectReferences(ctx, category, req.ProjectID, req.SiteID)
	suite.expectNotifications(requestor)
	suite.mockExpenseRepo.SaveExpenseFn = func(ctx context.Context, expense domain.Expense) error { return nil }
	suite.mockAttachments.On("Put", ctx, "receipt.pdf", "application/pdf", []byte("pdf-bytes")).Return("att-key-1", nil).Once()

	expense, err := suite.service.CreateExpense(ctx, req, requestor)

	suite.Require().NoError(err)
	suite.Require().NotNil(expense.Attachment)
	suite.Equal("att-key-1", expense.Attachment.StorageKey)
	suite.Equal("receipt.pdf", expense.Attachment.Name)
	suite.Nil(expense.SubcategoryAttachment)
	suite.mockAttachments.AssertExpectations(suite.T())
}

// --- GetExpenseByID Tests ---

func (suite *ExpenseServiceTestSuite) TestGetExpenseByID_RequestorOwnOnly() {
	ctx := context.Background()
	requestor := testActor(domain.RoleRequestor)
	expense := &domain.Expense{ExpenseID: uuid.NewString(), RequestorID: requestor.UserID}

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expense.ExpenseID).Return(expense, nil).Twice()

	got, err := suite.service.GetExpenseByID(ctx, expense.ExpenseID, requestor)
	suite.Require().NoError(err)
	suite.Equal(expense, got)

	other := testActor(domain.RoleRequestor)
	got, err = suite.service.GetExpenseByID(ctx, expense.ExpenseID, other)
	suite.Require().Error(err)
	suite.Nil(got)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *ExpenseServiceTestSuite) TestGetExpenseByID_VerifierSeesAll() {
	ctx := context.Background()
	expense := &domain.Expense{ExpenseID: uuid.NewString(), RequestorID: uuid.NewString()}

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expense.ExpenseID).Return(expense, nil).Once()

	got, err := suite.service.GetExpenseByID(ctx, expense.ExpenseID, testActor(domain.RoleVerifier))
	suite.Require().NoError(err)
	suite.Equal(expense, got)
}

// --- Attachment download and listing ---

func (suite *ExpenseServiceTestSuite) TestGetAttachment_StreamsStoredBlob() {
	ctx := context.Background()
	requestor := testActor(domain.RoleRequestor)
	expense := &domain.Expense{
		ExpenseID:   uuid.NewString(),
		RequestorID: requestor.UserID,
		Attachment:  &domain.Attachment{Name: "receipt.pdf", MimeType: "application/pdf", StorageKey: "att-key-1"},
	}

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expense.ExpenseID).Return(expense, nil).Once()
	suite.mockAttachments.On("Get", ctx, "att-key-1").Return([]byte("pdf-bytes"), nil).Once()

	download, err := suite.service.GetAttachment(ctx, expense.ExpenseID, dto.AttachmentSlotExpense, requestor)

	suite.Require().NoError(err)
	suite.Equal("receipt.pdf", download.Name)
	suite.Equal("application/pdf", download.MimeType)
	suite.Equal([]byte("pdf-bytes"), download.Data)
	suite.mockAttachments.AssertExpectations(suite.T())
}

func (suite *ExpenseServiceTestSuite) TestGetAttachment_SubcategorySlot() {
	ctx := context.Background()
	expense := &domain.Expense{
		ExpenseID:             uuid.NewString(),
		RequestorID:           uuid.NewString(),
		SubcategoryAttachment: &domain.Attachment{Name: "quote.pdf", MimeType: "application/pdf", StorageKey: "att-key-2"},
	}

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expense.ExpenseID).Return(expense, nil).Once()
	suite.mockAttachments.On("Get", ctx, "att-key-2").Return([]byte("quote-bytes"), nil).Once()

	download, err := suite.service.GetAttachment(ctx, expense.ExpenseID, dto.AttachmentSlotSubcategory, testActor(domain.RoleVerifier))

	suite.Require().NoError(err)
	suite.Equal("quote.pdf", download.Name)
}

func (suite *ExpenseServiceTestSuite) TestGetAttachment_ForeignRequestorForbidden() {
	ctx := context.Background()
	expense := &domain.Expense{
		ExpenseID:   uuid.NewString(),
		RequestorID: uuid.NewString(),
		Attachment:  &domain.Attachment{Name: "receipt.pdf", StorageKey: "att-key-1"},
	}

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expense.ExpenseID).Return(expense, nil).Once()

	download, err := suite.service.GetAttachment(ctx, expense.ExpenseID, dto.AttachmentSlotExpense, testActor(domain.RoleRequestor))

	suite.Require().Error(err)
	suite.Nil(download)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockAttachments.AssertNotCalled(suite.T(), "Get", mock.Anything, mock.Anything)
}

func (suite *ExpenseServiceTestSuite) TestGetAttachment_EmptySlot() {
	ctx := context.Background()
	expense := &domain.Expense{ExpenseID: uuid.NewString(), ReferenceNumber: "EXP-20250501-1234", RequestorID: uuid.NewString()}

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expense.ExpenseID).Return(expense, nil).Once()

	download, err := suite.service.GetAttachment(ctx, expense.ExpenseID, dto.AttachmentSlotExpense, testActor(domain.RoleAdmin))

	suite.Require().Error(err)
	suite.Nil(download)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *ExpenseServiceTestSuite) TestGetAttachment_UnknownSlot() {
	ctx := context.Background()
	expense := &domain.Expense{ExpenseID: uuid.NewString(), RequestorID: uuid.NewString()}

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expense.ExpenseID).Return(expense, nil).Once()

	download, err := suite.service.GetAttachment(ctx, expense.ExpenseID, "thumbnail", testActor(domain.RoleAdmin))

	suite.Require().Error(err)
	suite.Nil(download)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ExpenseServiceTestSuite) TestListAttachments_FlattensCollection() {
	ctx := context.Background()
	both := domain.Expense{
		ExpenseID:             "e1",
		ReferenceNumber:       "EXP-20250501-0001",
		RequestorName:         "Sam",
		Attachment:            &domain.Attachment{Name: "receipt.pdf", MimeType: "application/pdf", StorageKey: "k1"},
		SubcategoryAttachment: &domain.Attachment{Name: "quote.pdf", MimeType: "application/pdf", StorageKey: "k2"},
	}
	bare := domain.Expense{ExpenseID: "e2", ReferenceNumber: "EXP-20250501-0002"}

	var gotFilter portsrepo.ExpenseFilter
	suite.mockExpenseRepo.FindExpensesFn = func(ctx context.Context, filter portsrepo.ExpenseFilter) ([]domain.Expense, error) {
		gotFilter = filter
		return []domain.Expense{both, bare}, nil
	}

	items, err := suite.service.ListAttachments(ctx, testActor(domain.RoleAdmin))

	suite.Require().NoError(err)
	suite.Equal(portsrepo.ExpenseFilter{}, gotFilter)
	suite.Require().Len(items, 2)
	suite.Equal("EXP-20250501-0001", items[0].ReferenceNumber)
	suite.Equal(dto.AttachmentSlotExpense, items[0].Slot)
	suite.Equal("k1", items[0].StorageKey)
	suite.Equal(dto.AttachmentSlotSubcategory, items[1].Slot)
	suite.Equal("quote.pdf", items[1].Name)
}

func (suite *ExpenseServiceTestSuite) TestListAttachments_AdminOnly() {
	ctx := context.Background()

	items, err := suite.service.ListAttachments(ctx, testActor(domain.RoleVerifier))

	suite.Require().Error(err)
	suite.Nil(items)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockExpenseRepo.AssertNotCalled(suite.T(), "FindExpenses", mock.Anything, mock.Anything)
}

// --- ListExpenses Tests ---

func (suite *ExpenseServiceTestSuite) TestListExpenses_VerifierDefaultQueue() {
	ctx := context.Background()
	verifier := testActor(domain.RoleVerifier)

	var gotFilter portsrepo.ExpenseFilter
	suite.mockExpenseRepo.FindExpensesFn = func(ctx context.Context, filter portsrepo.ExpenseFilter) ([]domain.Expense, error) {
		gotFilter = filter
		return nil, nil
	}

	_, err := suite.service.ListExpenses(ctx, verifier, dto.ListExpensesParams{})

	suite.Require().NoError(err)
	suite.Equal([]domain.ExpenseStatus{domain.StatusPendingVerification}, gotFilter.Statuses)
	suite.Empty(gotFilter.RequestorID)
}

func (suite *ExpenseServiceTestSuite) TestListExpenses_RequestorScopedToOwn() {
	ctx := context.Background()
	requestor := testActor(domain.RoleRequestor)

	var gotFilter portsrepo.ExpenseFilter
	suite.mockExpenseRepo.FindExpensesFn = func(ctx context.Context, filter portsrepo.ExpenseFilter) ([]domain.Expense, error) {
		gotFilter = filter
		return nil, nil
	}

	_, err := suite.service.ListExpenses(ctx, requestor, dto.ListExpensesParams{Status: "All"})

	suite.Require().NoError(err)
	suite.Equal(requestor.UserID, gotFilter.RequestorID)
	suite.Nil(gotFilter.Statuses)
}

func (suite *ExpenseServiceTestSuite) TestListExpenses_AdminQueueUnconstrained() {
	ctx := context.Background()

	var gotFilter portsrepo.ExpenseFilter
	suite.mockExpenseRepo.FindExpensesFn = func(ctx context.Context, filter portsrepo.ExpenseFilter) ([]domain.Expense, error) {
		gotFilter = filter
		return nil, nil
	}

	_, err := suite.service.ListExpenses(ctx, testActor(domain.RoleAdmin), dto.ListExpensesParams{})

	suite.Require().NoError(err)
	suite.Nil(gotFilter.Statuses)
	suite.Empty(gotFilter.RequestorID)
}

func (suite *ExpenseServiceTestSuite) TestListExpenses_ExplicitStatusOverridesQueue() {
	ctx := context.Background()
	verifier := testActor(domain.RoleVerifier)

	var gotFilter portsrepo.ExpenseFilter
	suite.mockExpenseRepo.FindExpensesFn = func(ctx context.Context, filter portsrepo.ExpenseFilter) ([]domain.Expense, error) {
		gotFilter = filter
		return nil, nil
	}

	_, err := suite.service.ListExpenses(ctx, verifier, dto.ListExpensesParams{Status: string(domain.StatusApproved)})

	suite.Require().NoError(err)
	suite.Equal([]domain.ExpenseStatus{domain.StatusApproved}, gotFilter.Statuses)
}

func (suite *ExpenseServiceTestSuite) TestListExpenses_InvalidStatusFilter() {
	ctx := context.Background()

	_, err := suite.service.ListExpenses(ctx, testActor(domain.RoleAdmin), dto.ListExpensesParams{Status: "Sideways"})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ExpenseServiceTestSuite) TestListExpenses_UnknownRoleForbidden() {
	ctx := context.Background()

	_, err := suite.service.ListExpenses(ctx, domain.Actor{UserID: "x", Role: "auditor"}, dto.ListExpensesParams{})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *ExpenseServiceTestSuite) TestListExpenses_PriorityPartitionIsStable() {
	ctx := context.Background()
	newest := domain.Expense{ExpenseID: "e1", SubmittedAt: time.Now()}
	highOld := domain.Expense{ExpenseID: "e2", SubmittedAt: time.Now().Add(-2 * time.Hour), IsHighPriority: true}
	middle := domain.Expense{ExpenseID: "e3", SubmittedAt: time.Now().Add(-1 * time.Hour)}
	highOldest := domain.Expense{ExpenseID: "e4", SubmittedAt: time.Now().Add(-3 * time.Hour), IsHighPriority: true}

	// Repository order: most recent first.
	suite.mockExpenseRepo.FindExpensesFn = func(ctx context.Context, filter portsrepo.ExpenseFilter) ([]domain.Expense, error) {
		return []domain.Expense{newest, highOld, middle, highOldest}, nil
	}

	expenses, err := suite.service.ListExpenses(ctx, testActor(domain.RoleAdmin), dto.ListExpensesParams{})

	suite.Require().NoError(err)
	ids := []string{expenses[0].ExpenseID, expenses[1].ExpenseID, expenses[2].ExpenseID, expenses[3].ExpenseID}
	// High-priority items lead, both partitions keep their recency order.
	suite.Equal([]string{"e2", "e4", "e1", "e3"}, ids)
}

func (suite *ExpenseServiceTestSuite) TestListExpenses_DateSortSkipsPartition() {
	ctx := context.Background()
	newest := domain.Expense{ExpenseID: "e1", SubmittedAt: time.Now()}
	highOld := domain.Expense{ExpenseID: "e2", SubmittedAt: time.Now().Add(-2 * time.Hour), IsHighPriority: true}

	suite.mockExpenseRepo.FindExpensesFn = func(ctx context.Context, filter portsrepo.ExpenseFilter) ([]domain.Expense, error) {
		return []domain.Expense{newest, highOld}, nil
	}

	expenses, err := suite.service.ListExpenses(ctx, testActor(domain.RoleAdmin), dto.ListExpensesParams{SortBy: dto.SortByDate})

	suite.Require().NoError(err)
	suite.Equal("e1", expenses[0].ExpenseID)
	suite.Equal("e2", expenses[1].ExpenseID)
}

// --- UpdateStatus Tests ---

func (suite *ExpenseServiceTestSuite) TestUpdateStatus_VerifierMovesToPendingApproval() {
	ctx := context.Background()
	verifier := testActor(domain.RoleVerifier)
	expense := &domain.Expense{
		ExpenseID:       uuid.NewString(),
		ReferenceNumber: "EXP-20250501-1234",
		RequestorID:     uuid.NewString(),
		Status:          domain.StatusPendingVerification,
		Version:         3,
		History: []domain.HistoryItem{
			{Action: domain.ActionSubmitted, Timestamp: time.Now().Add(-time.Hour)},
		},
	}

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expense.ExpenseID).Return(expense, nil).Once()
	suite.mockExpenseRepo.On("UpdateExpenseStatus", ctx, expense.ExpenseID, int64(3), domain.StatusPendingApproval,
		mock.MatchedBy(func(entry domain.HistoryItem) bool {
			return entry.Action == domain.ActionVerified && entry.ActorID == verifier.UserID && entry.Comment == "Looks good"
		})).Return(nil).Once()
	suite.expectNotifications(verifier)

	updated, err := suite.service.UpdateStatus(ctx, expense.ExpenseID, domain.StatusPendingApproval, verifier, "Looks good")

	suite.Require().NoError(err)
	suite.Require().NotNil(updated)
	suite.Equal(domain.StatusPendingApproval, updated.Status)
	suite.EqualValues(4, updated.Version)
	suite.Equal(domain.ActionVerified, updated.LastAction())
	suite.mockExpenseRepo.AssertExpectations(suite.T())
}

func (suite *ExpenseServiceTestSuite) TestUpdateStatus_MissingExpenseIsSilentNoOp() {
	ctx := context.Background()

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, "gone").Return(nil, apperrors.ErrNotFound).Once()

	updated, err := suite.service.UpdateStatus(ctx, "gone", domain.StatusRejected, testActor(domain.RoleVerifier), "")

	suite.NoError(err)
	suite.Nil(updated)
}

func (suite *ExpenseServiceTestSuite) TestUpdateStatus_DeletedBetweenReadAndWrite() {
	ctx := context.Background()
	verifier := testActor(domain.RoleVerifier)
	expense := &domain.Expense{ExpenseID: uuid.NewString(), Status: domain.StatusPendingVerification, Version: 1}

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expense.ExpenseID).Return(expense, nil).Once()
	suite.mockExpenseRepo.On("UpdateExpenseStatus", ctx, expense.ExpenseID, int64(1), domain.StatusRejected, mock.Anything).
		Return(apperrors.ErrNotFound).Once()

	updated, err := suite.service.UpdateStatus(ctx, expense.ExpenseID, domain.StatusRejected, verifier, "")

	suite.NoError(err)
	suite.Nil(updated)
}

func (suite *ExpenseServiceTestSuite) TestUpdateStatus_RoleMayNotTransition() {
	ctx := context.Background()
	requestor := testActor(domain.RoleRequestor)
	expense := &domain.Expense{ExpenseID: uuid.NewString(), Status: domain.StatusPendingVerification, Version: 1}

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expense.ExpenseID).Return(expense, nil).Once()

	updated, err := suite.service.UpdateStatus(ctx, expense.ExpenseID, domain.StatusApproved, requestor, "")

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.ErrorIs(err, apperrors.ErrInvalidTransition)
}

func (suite *ExpenseServiceTestSuite) TestUpdateStatus_VerifierMayNotApprove() {
	ctx := context.Background()
	verifier := testActor(domain.RoleVerifier)
	expense := &domain.Expense{ExpenseID: uuid.NewString(), Status: domain.StatusPendingVerification, Version: 1}

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expense.ExpenseID).Return(expense, nil).Once()

	updated, err := suite.service.UpdateStatus(ctx, expense.ExpenseID, domain.StatusApproved, verifier, "")

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.ErrorIs(err, apperrors.ErrInvalidTransition)
}

func (suite *ExpenseServiceTestSuite) TestUpdateStatus_TerminalStateRejectsTransition() {
	ctx := context.Background()
	approver := testActor(domain.RoleApprover)
	expense := &domain.Expense{ExpenseID: uuid.NewString(), Status: domain.StatusApproved, Version: 2}

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expense.ExpenseID).Return(expense, nil).Once()

	updated, err := suite.service.UpdateStatus(ctx, expense.ExpenseID, domain.StatusRejected, approver, "")

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.ErrorIs(err, apperrors.ErrInvalidTransition)
}

func (suite *ExpenseServiceTestSuite) TestUpdateStatus_StaleVersionConflict() {
	ctx := context.Background()
	approver := testActor(domain.RoleApprover)
	expense := &domain.Expense{ExpenseID: uuid.NewString(), Status: domain.StatusPendingApproval, Version: 5}

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expense.ExpenseID).Return(expense, nil).Once()
	suite.mockExpenseRepo.On("UpdateExpenseStatus", ctx, expense.ExpenseID, int64(5), domain.StatusApproved, mock.Anything).
		Return(apperrors.ErrConflict).Once()

	updated, err := suite.service.UpdateStatus(ctx, expense.ExpenseID, domain.StatusApproved, approver, "")

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *ExpenseServiceTestSuite) TestUpdateStatus_InvalidStatus() {
	ctx := context.Background()

	updated, err := suite.service.UpdateStatus(ctx, uuid.NewString(), "Escalated", testActor(domain.RoleVerifier), "")

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ExpenseServiceTestSuite) TestUpdateStatus_PendingVerificationIsNotATarget() {
	ctx := context.Background()

	updated, err := suite.service.UpdateStatus(ctx, uuid.NewString(), domain.StatusPendingVerification, testActor(domain.RoleVerifier), "")

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockExpenseRepo.AssertNotCalled(suite.T(), "FindExpenseByID", mock.Anything, mock.Anything)
}

// --- BulkUpdateStatus Tests ---

func (suite *ExpenseServiceTestSuite) TestBulkUpdateStatus_PartialSuccess() {
	ctx := context.Background()
	verifier := testActor(domain.RoleVerifier)

	eligible1 := &domain.Expense{ExpenseID: "b1", Status: domain.StatusPendingVerification, Version: 1}
	eligible2 := &domain.Expense{ExpenseID: "b2", Status: domain.StatusPendingVerification, Version: 1}
	terminal := &domain.Expense{ExpenseID: "b3", Status: domain.StatusApproved, Version: 1}

	suite.mockExpenseRepo.FindExpenseByIDFn = func(ctx context.Context, expenseID string) (*domain.Expense, error) {
		switch expenseID {
		case "b1":
			return eligible1, nil
		case "b2":
			return eligible2, nil
		case "b3":
			return terminal, nil
		}
		return nil, apperrors.ErrNotFound
	}
	suite.mockExpenseRepo.UpdateExpenseStatusFn = func(ctx context.Context, expenseID string, expectedVersion int64, newStatus domain.ExpenseStatus, entry domain.HistoryItem) error {
		return nil
	}
	suite.expectNotifications(verifier)

	var auditDetails string
	suite.mockAuditSvc.RecordFn = func(ctx context.Context, actor domain.Actor, action, details string) error {
		suite.Equal("Bulk Status Update", action)
		auditDetails = details
		return nil
	}

	result, err := suite.service.BulkUpdateStatus(ctx, []string{"b1", "b2", "b3", "missing"}, domain.StatusRejected, verifier, "Budget exceeded")

	suite.Require().NoError(err)
	suite.Equal(2, result.UpdatedCount)
	suite.Equal(2, result.SkippedCount)
	suite.Equal([]string{"b1", "b2"}, result.UpdatedIDs)
	suite.Equal("Rejected 2 expense(s)", auditDetails)
}

func (suite *ExpenseServiceTestSuite) TestBulkUpdateStatus_AuditFailureSurfaces() {
	ctx := context.Background()
	verifier := testActor(domain.RoleVerifier)

	suite.mockExpenseRepo.FindExpenseByIDFn = func(ctx context.Context, expenseID string) (*domain.Expense, error) {
		return nil, apperrors.ErrNotFound
	}
	suite.mockAuditSvc.RecordFn = func(ctx context.Context, actor domain.Actor, action, details string) error {
		return assert.AnError
	}

	result, err := suite.service.BulkUpdateStatus(ctx, []string{"missing"}, domain.StatusRejected, verifier, "")

	suite.Require().Error(err)
	suite.Require().NotNil(result)
	suite.Equal(1, result.SkippedCount)
}

func (suite *ExpenseServiceTestSuite) TestBulkUpdateStatus_InvalidStatus() {
	ctx := context.Background()

	result, err := suite.service.BulkUpdateStatus(ctx, []string{"b1"}, "Escalated", testActor(domain.RoleVerifier), "")

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ExpenseServiceTestSuite) TestBulkUpdateStatus_PendingVerificationIsNotATarget() {
	ctx := context.Background()

	result, err := suite.service.BulkUpdateStatus(ctx, []string{"b1", "b2"}, domain.StatusPendingVerification, testActor(domain.RoleVerifier), "")

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrValidation)
	// Rejected up front: nothing read, nothing audited.
	suite.mockExpenseRepo.AssertNotCalled(suite.T(), "FindExpenseByID", mock.Anything, mock.Anything)
	suite.mockAuditSvc.AssertNotCalled(suite.T(), "Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- TogglePriority Tests ---

func (suite *ExpenseServiceTestSuite) TestTogglePriority_MarksHigh() {
	ctx := context.Background()
	admin := testActor(domain.RoleAdmin)
	expense := &domain.Expense{
		ExpenseID:       uuid.NewString(),
		ReferenceNumber: "EXP-20250501-9876",
		Version:         2,
	}

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expense.ExpenseID).Return(expense, nil).Once()
	suite.mockExpenseRepo.On("UpdateExpensePriority", ctx, expense.ExpenseID, int64(2), true).Return(nil).Once()
	suite.mockAuditSvc.On("Record", ctx, admin, "Marked as High Priority", "Expense EXP-20250501-9876").Return(nil).Once()

	updated, err := suite.service.TogglePriority(ctx, expense.ExpenseID, admin)

	suite.Require().NoError(err)
	suite.True(updated.IsHighPriority)
	suite.EqualValues(3, updated.Version)
	suite.mockAuditSvc.AssertExpectations(suite.T())
}

func (suite *ExpenseServiceTestSuite) TestTogglePriority_RemovesHigh() {
	ctx := context.Background()
	admin := testActor(domain.RoleAdmin)
	expense := &domain.Expense{
		ExpenseID:       uuid.NewString(),
		ReferenceNumber: "EXP-20250501-9876",
		IsHighPriority:  true,
		Version:         2,
	}

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expense.ExpenseID).Return(expense, nil).Once()
	suite.mockExpenseRepo.On("UpdateExpensePriority", ctx, expense.ExpenseID, int64(2), false).Return(nil).Once()
	suite.mockAuditSvc.On("Record", ctx, admin, "Removed High Priority", "Expense EXP-20250501-9876").Return(nil).Once()

	updated, err := suite.service.TogglePriority(ctx, expense.ExpenseID, admin)

	suite.Require().NoError(err)
	suite.False(updated.IsHighPriority)
}

func (suite *ExpenseServiceTestSuite) TestTogglePriority_AuditFailureSurfaces() {
	ctx := context.Background()
	admin := testActor(domain.RoleAdmin)
	expense := &domain.Expense{ExpenseID: uuid.NewString(), ReferenceNumber: "EXP-1", Version: 1}

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expense.ExpenseID).Return(expense, nil).Once()
	suite.mockExpenseRepo.On("UpdateExpensePriority", ctx, expense.ExpenseID, int64(1), true).Return(nil).Once()
	suite.mockAuditSvc.On("Record", ctx, admin, "Marked as High Priority", "Expense EXP-1").Return(assert.AnError).Once()

	updated, err := suite.service.TogglePriority(ctx, expense.ExpenseID, admin)

	suite.Require().Error(err)
	suite.Nil(updated)
}

// --- Notification fan-out ---

func (suite *ExpenseServiceTestSuite) TestCreateExpense_NotifiesRequestorAndVerifiers() {
	ctx := context.Background()
	requestor := testActor(domain.RoleRequestor)
	category := &domain.Category{CategoryID: uuid.NewString(), Name: "Travel"}
	req := dto.CreateExpenseRequest{
		CategoryID:  category.CategoryID,
		ProjectID:   uuid.NewString(),
		SiteID:      uuid.NewString(),
		Amount:      decimal.RequireFromString("10"),
		Description: "Taxi",
	}

	suite.expectReferences(ctx, category, req.ProjectID, req.SiteID)
	suite.mockExpenseRepo.SaveExpenseFn = func(ctx context.Context, expense domain.Expense) error { return nil }
	suite.mockUserSvc.GetUserByIDFn = func(ctx context.Context, userID string) (*domain.User, error) {
		return &domain.User{UserID: userID, Name: requestor.Name}, nil
	}
	suite.mockUserSvc.ListUsersByRoleFn = func(ctx context.Context, role domain.Role) ([]domain.User, error) {
		suite.Equal(domain.RoleVerifier, role)
		return []domain.User{{UserID: "v1"}, {UserID: "v2"}}, nil
	}

	var kinds []portssvc.NotificationKind
	var recipientCounts []int
	suite.mockNotifier.NotifyFn = func(ctx context.Context, recipients []domain.User, n portssvc.Notification) error {
		kinds = append(kinds, n.Kind)
		recipientCounts = append(recipientCounts, len(recipients))
		suite.Equal("Travel", n.CategoryName)
		return nil
	}

	_, err := suite.service.CreateExpense(ctx, req, requestor)

	suite.Require().NoError(err)
	suite.Equal([]portssvc.NotificationKind{portssvc.NotifySubmissionReceipt, portssvc.NotifySubmissionAlert}, kinds)
	suite.Equal([]int{1, 2}, recipientCounts)
}

func (suite *ExpenseServiceTestSuite) TestCreateExpense_AutoApprovedSkipsVerifierAlert() {
	ctx := context.Background()
	requestor := testActor(domain.RoleRequestor)
	category := &domain.Category{
		CategoryID:        uuid.NewString(),
		Name:              "Office Supplies",
		AutoApproveAmount: decimal.RequireFromString("500"),
	}
	req := dto.CreateExpenseRequest{
		CategoryID:  category.CategoryID,
		ProjectID:   uuid.NewString(),
		SiteID:      uuid.NewString(),
		Amount:      decimal.RequireFromString("10"),
		Description: "Pens",
	}

	suite.expectReferences(ctx, category, req.ProjectID, req.SiteID)
	suite.mockExpenseRepo.SaveExpenseFn = func(ctx context.Context, expense domain.Expense) error { return nil }
	suite.mockAuditSvc.RecordFn = func(ctx context.Context, actor domain.Actor, action, details string) error { return nil }
	suite.mockUserSvc.GetUserByIDFn = func(ctx context.Context, userID string) (*domain.User, error) {
		return &domain.User{UserID: userID}, nil
	}

	var kinds []portssvc.NotificationKind
	suite.mockNotifier.NotifyFn = func(ctx context.Context, recipients []domain.User, n portssvc.Notification) error {
		kinds = append(kinds, n.Kind)
		return nil
	}

	_, err := suite.service.CreateExpense(ctx, req, requestor)

	suite.Require().NoError(err)
	// Auto-approved claims never enter the verification queue.
	suite.Equal([]portssvc.NotificationKind{portssvc.NotifySubmissionReceipt}, kinds)
}

func (suite *ExpenseServiceTestSuite) TestUpdateStatus_VerificationNotifiesApprovers() {
	ctx := context.Background()
	verifier := testActor(domain.RoleVerifier)
	expense := &domain.Expense{
		ExpenseID:   uuid.NewString(),
		CategoryID:  uuid.NewString(),
		RequestorID: uuid.NewString(),
		Status:      domain.StatusPendingVerification,
		Version:     1,
	}

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expense.ExpenseID).Return(expense, nil).Once()
	suite.mockExpenseRepo.UpdateExpenseStatusFn = func(ctx context.Context, expenseID string, expectedVersion int64, newStatus domain.ExpenseStatus, entry domain.HistoryItem) error {
		return nil
	}
	suite.mockCategoryRepo.FindCategoryByIDFn = func(ctx context.Context, categoryID string) (*domain.Category, error) {
		return &domain.Category{CategoryID: categoryID, Name: "Travel"}, nil
	}
	suite.mockUserSvc.GetUserByIDFn = func(ctx context.Context, userID string) (*domain.User, error) {
		return &domain.User{UserID: userID}, nil
	}
	suite.mockUserSvc.ListUsersByRoleFn = func(ctx context.Context, role domain.Role) ([]domain.User, error) {
		suite.Equal(domain.RoleApprover, role)
		return []domain.User{{UserID: "a1"}}, nil
	}

	var kinds []portssvc.NotificationKind
	suite.mockNotifier.NotifyFn = func(ctx context.Context, recipients []domain.User, n portssvc.Notification) error {
		kinds = append(kinds, n.Kind)
		return nil
	}

	_, err := suite.service.UpdateStatus(ctx, expense.ExpenseID, domain.StatusPendingApproval, verifier, "ok")

	suite.Require().NoError(err)
	suite.Equal([]portssvc.NotificationKind{portssvc.NotifyStatusChange, portssvc.NotifyVerificationAlert}, kinds)
}

func (suite *ExpenseServiceTestSuite) TestUpdateStatus_NotificationFailureIsNonFatal() {
	ctx := context.Background()
	approver := testActor(domain.RoleApprover)
	expense := &domain.Expense{
		ExpenseID:   uuid.NewString(),
		CategoryID:  uuid.NewString(),
		RequestorID: uuid.NewString(),
		Status:      domain.StatusPendingApproval,
		Version:     1,
	}

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expense.ExpenseID).Return(expense, nil).Once()
	suite.mockExpenseRepo.UpdateExpenseStatusFn = func(ctx context.Context, expenseID string, expectedVersion int64, newStatus domain.ExpenseStatus, entry domain.HistoryItem) error {
		return nil
	}
	suite.mockCategoryRepo.FindCategoryByIDFn = func(ctx context.Context, categoryID string) (*domain.Category, error) {
		return &domain.Category{CategoryID: categoryID, Name: "Travel"}, nil
	}
	suite.mockUserSvc.GetUserByIDFn = func(ctx context.Context, userID string) (*domain.User, error) {
		return &domain.User{UserID: userID}, nil
	}
	suite.mockNotifier.NotifyFn = func(ctx context.Context, recipients []domain.User, n portssvc.Notification) error {
		return assert.AnError
	}

	updated, err := suite.service.UpdateStatus(ctx, expense.ExpenseID, domain.StatusApproved, approver, "")

	suite.Require().NoError(err)
	suite.Equal(domain.StatusApproved, updated.Status)
}

// --- Subcategory attachment enforcement ---

func (suite *ExpenseServiceTestSuite) TestCreateExpense_SubcategoryAttachmentEnforced() {
	ctx := context.Background()
	sub := domain.Subcategory{SubcategoryID: uuid.NewString(), Name: "Flights", AttachmentRequired: true}
	category := &domain.Category{
		CategoryID:    uuid.NewString(),
		Name:          "Travel",
		Subcategories: []domain.Subcategory{sub},
	}
	req := dto.CreateExpenseRequest{
		CategoryID:    category.CategoryID,
		SubcategoryID: sub.SubcategoryID,
		ProjectID:     uuid.NewString(),
		SiteID:        uuid.NewString(),
		Amount:        decimal.RequireFromString("10"),
		Description:   "Flight to site",
	}

	suite.withPolicy(services.PolicyEngine{EnforceSubcategoryAttachment: true})
	suite.expectReferences(ctx, category, req.ProjectID, req.SiteID)

	expense, err := suite.service.CreateExpense(ctx, req, testActor(domain.RoleRequestor))

	suite.Require().Error(err)
	suite.Nil(expense)
	suite.ErrorIs(err, apperrors.ErrPolicyViolation)
}

func TestExpenseServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ExpenseServiceTestSuite))
}
