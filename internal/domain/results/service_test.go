package results

import (
	"context"
	"sort"
	"testing"

	"github.com/google/uuid"

	"github.com/librelims/lims/internal/domain/exams"
)

type mockResultRepo struct {
	results map[uuid.UUID]*Result
}

func newMockResultRepo() *mockResultRepo {
	return &mockResultRepo{results: make(map[uuid.UUID]*Result)}
}

func (m *mockResultRepo) Create(ctx context.Context, r *Result) error {
	r.ID = uuid.New()
	m.results[r.ID] = r
	return nil
}

func (m *mockResultRepo) GetByID(ctx context.Context, id uuid.UUID) (*Result, error) {
	r, ok := m.results[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

func (m *mockResultRepo) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*Result, error) {
	for _, r := range m.results {
		if r.OrderID == orderID {
			return r, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockResultRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	r, ok := m.results[id]
	if !ok {
		return ErrNotFound
	}
	r.Status = status
	return nil
}

func (m *mockResultRepo) List(ctx context.Context, filters ListFilters, limit, offset int) ([]*Summary, int, error) {
	return nil, 0, nil
}

type mockDetailRepo struct {
	details map[uuid.UUID]*ResultDetail
	seq     int
}

func newMockDetailRepo() *mockDetailRepo {
	return &mockDetailRepo{details: make(map[uuid.UUID]*ResultDetail)}
}

func (m *mockDetailRepo) Create(ctx context.Context, d *ResultDetail) error {
	d.ID = uuid.New()
	m.seq++
	d.CreatedAt = d.CreatedAt.AddDate(0, 0, m.seq)
	m.details[d.ID] = d
	return nil
}

func (m *mockDetailRepo) GetByID(ctx context.Context, id uuid.UUID) (*ResultDetail, error) {
	d, ok := m.details[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (m *mockDetailRepo) ListByResult(ctx context.Context, resultID uuid.UUID) ([]*ResultDetail, error) {
	var items []*ResultDetail
	for _, d := range m.details {
		if d.ResultID == resultID {
			items = append(items, d)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return items, nil
}

func (m *mockDetailRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	d, ok := m.details[id]
	if !ok {
		return ErrNotFound
	}
	d.Status = status
	return nil
}

type mockOrderSource struct {
	lines map[uuid.UUID][]OrderLine
}

func (m *mockOrderSource) LinesOf(ctx context.Context, orderID uuid.UUID) ([]OrderLine, error) {
	return m.lines[orderID], nil
}

type mockExamExpander struct {
	exams      map[uuid.UUID]*exams.Exam
	components map[uuid.UUID][]*exams.Exam
}

func (m *mockExamExpander) GetExam(ctx context.Context, id uuid.UUID) (*exams.Exam, error) {
	e, ok := m.exams[id]
	if !ok {
		return nil, exams.ErrNotFound
	}
	return e, nil
}

func (m *mockExamExpander) ComponentsOf(ctx context.Context, examID uuid.UUID) ([]*exams.Exam, error) {
	return m.components[examID], nil
}

type fixture struct {
	svc      *Service
	results  *mockResultRepo
	details  *mockDetailRepo
	orders   *mockOrderSource
	expander *mockExamExpander
}

func newFixture() *fixture {
	f := &fixture{
		results:  newMockResultRepo(),
		details:  newMockDetailRepo(),
		orders:   &mockOrderSource{lines: make(map[uuid.UUID][]OrderLine)},
		expander: &mockExamExpander{exams: make(map[uuid.UUID]*exams.Exam), components: make(map[uuid.UUID][]*exams.Exam)},
	}
	f.svc = NewService(f.results, f.details, f.orders, f.expander, nil)
	return f
}

func (f *fixture) addExam(name string, panel bool) *exams.Exam {
	e := &exams.Exam{ID: uuid.New(), Name: name, HasComponents: panel}
	f.expander.exams[e.ID] = e
	return e
}

func TestCreateForOrderExpandsPanel(t *testing.T) {
	f := newFixture()
	panel := f.addExam("Lipid Panel", true)
	a := f.addExam("HDL", false)
	b := f.addExam("LDL", false)
	c := f.addExam("Triglycerides", false)
	f.expander.components[panel.ID] = []*exams.Exam{a, b, c}

	orderID := uuid.New()
	lineID := uuid.New()
	f.orders.lines[orderID] = []OrderLine{{ID: lineID, ExamID: panel.ID}}

	res, err := f.svc.CreateForOrder(context.Background(), orderID)
	if err != nil {
		t.Fatalf("create for order: %v", err)
	}
	if res.Status != StatusPending {
		t.Errorf("expected pending result, got %s", res.Status)
	}

	details, _ := f.details.ListByResult(context.Background(), res.ID)
	if len(details) != 3 {
		t.Fatalf("expected 3 details, got %d", len(details))
	}
	seen := map[uuid.UUID]bool{}
	for i, d := range details {
		if d.Status != DetailPendingSample {
			t.Errorf("detail %d: expected pending_sample, got %s", i, d.Status)
		}
		if d.OrderDetailID != lineID {
			t.Errorf("detail %d: expected same order detail", i)
		}
		if seen[d.ExamID] {
			t.Errorf("detail %d: duplicate component exam", i)
		}
		seen[d.ExamID] = true
	}
	want := []uuid.UUID{a.ID, b.ID, c.ID}
	for i, d := range details {
		if d.ExamID != want[i] {
			t.Errorf("detail %d: expected component order preserved", i)
		}
	}
}

func TestCreateForOrderAtomicExam(t *testing.T) {
	f := newFixture()
	atomic := f.addExam("Glucose", false)

	orderID := uuid.New()
	lineID := uuid.New()
	f.orders.lines[orderID] = []OrderLine{{ID: lineID, ExamID: atomic.ID}}

	res, err := f.svc.CreateForOrder(context.Background(), orderID)
	if err != nil {
		t.Fatalf("create for order: %v", err)
	}
	details, _ := f.details.ListByResult(context.Background(), res.ID)
	if len(details) != 1 {
		t.Fatalf("expected 1 detail, got %d", len(details))
	}
	if details[0].ExamID != atomic.ID || details[0].OrderDetailID != lineID {
		t.Error("detail should reference the exam and its order line")
	}
}

func (f *fixture) seedResult(t *testing.T, statuses ...string) (*Result, []*ResultDetail) {
	t.Helper()
	res := &Result{OrderID: uuid.New(), Status: StatusPending}
	if err := f.results.Create(context.Background(), res); err != nil {
		t.Fatalf("seed result: %v", err)
	}
	var details []*ResultDetail
	for _, st := range statuses {
		d := &ResultDetail{ResultID: res.ID, OrderDetailID: uuid.New(), ExamID: uuid.New(), Status: st}
		if err := f.details.Create(context.Background(), d); err != nil {
			t.Fatalf("seed detail: %v", err)
		}
		details = append(details, d)
	}
	return res, details
}

func TestUpdateDetailStatusesAppliesAndRecomputes(t *testing.T) {
	f := newFixture()
	res, details := f.seedResult(t, DetailPendingSample, DetailPendingSample)

	err := f.svc.UpdateDetailStatuses(context.Background(), res.ID, map[uuid.UUID]string{
		details[0].ID: DetailSampleReceived,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if f.details.details[details[0].ID].Status != DetailSampleReceived {
		t.Error("expected detail status applied")
	}
	if f.results.results[res.ID].Status != StatusInProgress {
		t.Errorf("expected roll-up in_progress, got %s", f.results.results[res.ID].Status)
	}
}

func TestUpdateDetailStatusesSilentlyDropsInvalid(t *testing.T) {
	f := newFixture()
	res, details := f.seedResult(t, DetailSampleReceived, DetailSampleReceived)

	// received_external is unreachable from sample_received; the other row
	// applies normally and no error surfaces.
	err := f.svc.UpdateDetailStatuses(context.Background(), res.ID, map[uuid.UUID]string{
		details[0].ID: DetailReceivedExternal,
		details[1].ID: DetailCompleted,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := f.details.details[details[0].ID].Status; got != DetailSampleReceived {
		t.Errorf("invalid target should be dropped, detail moved to %s", got)
	}
	if got := f.details.details[details[1].ID].Status; got != DetailCompleted {
		t.Errorf("valid row should apply, got %s", got)
	}
	if got := f.results.results[res.ID].Status; got != StatusPartialResults {
		t.Errorf("expected partial_results roll-up, got %s", got)
	}
}

func TestUpdateDetailStatusesIgnoresForeignDetail(t *testing.T) {
	f := newFixture()
	res, _ := f.seedResult(t, DetailPendingSample)
	other, otherDetails := f.seedResult(t, DetailPendingSample)

	err := f.svc.UpdateDetailStatuses(context.Background(), res.ID, map[uuid.UUID]string{
		otherDetails[0].ID: DetailDelivered,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := f.details.details[otherDetails[0].ID].Status; got != DetailPendingSample {
		t.Errorf("detail of another result must not change, got %s", got)
	}
	_ = other
}

func TestUpdateDetailStatusesPartialDelivery(t *testing.T) {
	f := newFixture()
	res, details := f.seedResult(t, DetailDelivered, DetailDelivered, DetailCompleted)

	err := f.svc.UpdateDetailStatuses(context.Background(), res.ID, map[uuid.UUID]string{})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := f.results.results[res.ID].Status; got != StatusPartialDelivery {
		t.Errorf("expected partial_delivery, got %s", got)
	}
	_ = details
}

func TestRecomputeStatusDelivered(t *testing.T) {
	f := newFixture()
	res, _ := f.seedResult(t, DetailDelivered, DetailDelivered)

	if err := f.svc.RecomputeStatus(context.Background(), res.ID); err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if got := f.results.results[res.ID].Status; got != StatusDelivered {
		t.Errorf("expected delivered, got %s", got)
	}
}

func TestRecomputeStatusNoDetailsLeavesUnchanged(t *testing.T) {
	f := newFixture()
	res, _ := f.seedResult(t)

	if err := f.svc.RecomputeStatus(context.Background(), res.ID); err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if got := f.results.results[res.ID].Status; got != StatusPending {
		t.Errorf("expected unchanged pending, got %s", got)
	}
}

func TestListResultsRejectsUnknownGroup(t *testing.T) {
	f := newFixture()

	if _, _, err := f.svc.ListResults(context.Background(), ListFilters{StatusGroup: "nope"}, 20, 0); err == nil {
		t.Error("expected error for unknown status group")
	}
}
