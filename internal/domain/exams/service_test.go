package exams

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/google/uuid"
)

type mockExamRepo struct {
	exams map[uuid.UUID]*Exam
}

func newMockExamRepo() *mockExamRepo {
	return &mockExamRepo{exams: make(map[uuid.UUID]*Exam)}
}

func (m *mockExamRepo) Create(ctx context.Context, e *Exam) error {
	e.ID = uuid.New()
	m.exams[e.ID] = e
	return nil
}

func (m *mockExamRepo) GetByID(ctx context.Context, id uuid.UUID) (*Exam, error) {
	e, ok := m.exams[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

func (m *mockExamRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*Exam, error) {
	var items []*Exam
	for _, id := range ids {
		if e, ok := m.exams[id]; ok {
			items = append(items, e)
		}
	}
	return items, nil
}

func (m *mockExamRepo) GetByCode(ctx context.Context, code string) (*Exam, error) {
	for _, e := range m.exams {
		if e.Code == code {
			return e, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockExamRepo) Update(ctx context.Context, e *Exam) error {
	if _, ok := m.exams[e.ID]; !ok {
		return ErrNotFound
	}
	m.exams[e.ID] = e
	return nil
}

func (m *mockExamRepo) List(ctx context.Context, nameFilter string, limit, offset int) ([]*Exam, int, error) {
	var items []*Exam
	for _, e := range m.exams {
		if nameFilter == "" || strings.Contains(e.Name, nameFilter) {
			items = append(items, e)
		}
	}
	return items, len(items), nil
}

func (m *mockExamRepo) Search(ctx context.Context, query string, limit int) ([]*Exam, error) {
	var items []*Exam
	for _, e := range m.exams {
		if strings.Contains(e.Name, query) || strings.Contains(e.Code, query) {
			items = append(items, e)
		}
	}
	return items, nil
}

func (m *mockExamRepo) MaxCodeNumber(ctx context.Context) (int, error) {
	max := 0
	for _, e := range m.exams {
		if !strings.HasPrefix(e.Code, "EX") {
			continue
		}
		n, err := strconv.Atoi(e.Code[2:])
		if err == nil && n > max {
			max = n
		}
	}
	return max, nil
}

func (m *mockExamRepo) ListNonPanels(ctx context.Context) ([]*Exam, error) {
	var items []*Exam
	for _, e := range m.exams {
		if !e.HasComponents {
			items = append(items, e)
		}
	}
	return items, nil
}

type mockComponentRepo struct {
	exams      *mockExamRepo
	components map[uuid.UUID][]uuid.UUID
}

func newMockComponentRepo(exams *mockExamRepo) *mockComponentRepo {
	return &mockComponentRepo{exams: exams, components: make(map[uuid.UUID][]uuid.UUID)}
}

func (m *mockComponentRepo) ComponentsOf(ctx context.Context, parentID uuid.UUID) ([]*Exam, error) {
	var items []*Exam
	for _, id := range m.components[parentID] {
		if e, ok := m.exams.exams[id]; ok {
			items = append(items, e)
		}
	}
	return items, nil
}

func (m *mockComponentRepo) ComponentIDsOf(ctx context.Context, parentID uuid.UUID) ([]uuid.UUID, error) {
	return m.components[parentID], nil
}

func (m *mockComponentRepo) Replace(ctx context.Context, parentID uuid.UUID, componentIDs []uuid.UUID) error {
	m.components[parentID] = componentIDs
	return nil
}

func (m *mockComponentRepo) IsComponent(ctx context.Context, examID uuid.UUID) (bool, error) {
	for _, ids := range m.components {
		for _, id := range ids {
			if id == examID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *mockComponentRepo) HasComponents(ctx context.Context, parentID uuid.UUID) (bool, error) {
	return len(m.components[parentID]) > 0, nil
}

type mockCategoryRepo struct {
	categories map[uuid.UUID]*ExamCategory
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{categories: make(map[uuid.UUID]*ExamCategory)}
}

func (m *mockCategoryRepo) Create(ctx context.Context, c *ExamCategory) error {
	c.ID = uuid.New()
	m.categories[c.ID] = c
	return nil
}

func (m *mockCategoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*ExamCategory, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

func (m *mockCategoryRepo) List(ctx context.Context) ([]*ExamCategory, error) {
	var items []*ExamCategory
	for _, c := range m.categories {
		items = append(items, c)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (m *mockCategoryRepo) Update(ctx context.Context, c *ExamCategory) error {
	if _, ok := m.categories[c.ID]; !ok {
		return ErrNotFound
	}
	m.categories[c.ID] = c
	return nil
}

func newTestService() (*Service, *mockExamRepo, *mockComponentRepo) {
	exams := newMockExamRepo()
	components := newMockComponentRepo(exams)
	return NewService(exams, components, newMockCategoryRepo(), nil), exams, components
}

func addExam(t *testing.T, svc *Service, name string, panel bool) *Exam {
	t.Helper()
	e := &Exam{Name: name, Price: 100, HasComponents: panel, IsActive: true}
	if err := svc.CreateExam(context.Background(), e); err != nil {
		t.Fatalf("create exam %s: %v", name, err)
	}
	return e
}

func TestCreateExamAssignsSequentialCodes(t *testing.T) {
	svc, _, _ := newTestService()

	for i := 1; i <= 3; i++ {
		e := addExam(t, svc, fmt.Sprintf("Exam %d", i), false)
		want := fmt.Sprintf("EX%05d", i)
		if e.Code != want {
			t.Errorf("exam %d: expected code %s, got %s", i, want, e.Code)
		}
	}
}

func TestCreateExamKeepsExplicitCode(t *testing.T) {
	svc, _, _ := newTestService()

	e := &Exam{Name: "Glucose", Code: "GLU01", Price: 20}
	if err := svc.CreateExam(context.Background(), e); err != nil {
		t.Fatalf("create: %v", err)
	}
	if e.Code != "GLU01" {
		t.Errorf("expected explicit code preserved, got %s", e.Code)
	}
}

func TestComponentsOfNonPanelIsEmpty(t *testing.T) {
	svc, _, _ := newTestService()
	atomic := addExam(t, svc, "Hemoglobin", false)

	items, err := svc.ComponentsOf(context.Background(), atomic.ID)
	if err != nil {
		t.Fatalf("components: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected no components for atomic exam, got %d", len(items))
	}
}

func TestSetComponentsAndOrder(t *testing.T) {
	svc, _, _ := newTestService()
	panel := addExam(t, svc, "Lipid Panel", true)
	a := addExam(t, svc, "HDL", false)
	b := addExam(t, svc, "LDL", false)
	c := addExam(t, svc, "Triglycerides", false)

	if err := svc.SetComponents(context.Background(), panel.ID, []uuid.UUID{b.ID, c.ID, a.ID}); err != nil {
		t.Fatalf("set components: %v", err)
	}
	items, err := svc.ComponentsOf(context.Background(), panel.ID)
	if err != nil {
		t.Fatalf("components: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 components, got %d", len(items))
	}
	got := []string{items[0].Name, items[1].Name, items[2].Name}
	want := []string{"LDL", "Triglycerides", "HDL"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestValidateNoCycleDirect(t *testing.T) {
	svc, _, _ := newTestService()
	panel := addExam(t, svc, "Panel", true)
	a := addExam(t, svc, "A", false)

	err := svc.ValidateNoCycle(context.Background(), panel.ID, []uuid.UUID{a.ID, panel.ID})
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected CycleError, got %v", err)
	}
	if !cycleErr.Direct {
		t.Error("expected direct self-reference")
	}
}

func TestValidateNoCycleOneHop(t *testing.T) {
	svc, _, components := newTestService()
	panel := addExam(t, svc, "Panel", true)
	other := addExam(t, svc, "Other", true)
	a := addExam(t, svc, "A", false)

	// other already contains panel as a direct component
	components.components[other.ID] = []uuid.UUID{panel.ID, a.ID}

	err := svc.ValidateNoCycle(context.Background(), panel.ID, []uuid.UUID{other.ID})
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected CycleError, got %v", err)
	}
	if cycleErr.Direct {
		t.Error("expected one-hop back-reference, not direct")
	}
}

func TestValidateNoCycleMissesTransitive(t *testing.T) {
	// A -> B -> C with C containing A only beyond one hop: the check
	// intentionally does not detect this.
	svc, _, components := newTestService()
	a := addExam(t, svc, "A", true)
	b := addExam(t, svc, "B", true)
	c := addExam(t, svc, "C", true)

	components.components[b.ID] = []uuid.UUID{c.ID}
	components.components[c.ID] = []uuid.UUID{a.ID}

	if err := svc.ValidateNoCycle(context.Background(), a.ID, []uuid.UUID{b.ID}); err != nil {
		t.Errorf("transitive cycle beyond one hop should pass the check, got %v", err)
	}
}

func TestSetComponentsRejectsPanelCandidate(t *testing.T) {
	svc, _, _ := newTestService()
	panel := addExam(t, svc, "Panel", true)
	nested := addExam(t, svc, "Nested Panel", true)

	if err := svc.SetComponents(context.Background(), panel.ID, []uuid.UUID{nested.ID}); err == nil {
		t.Error("expected rejection of panel candidate")
	}
}

func TestSetComponentsRejectsNonPanelParent(t *testing.T) {
	svc, _, _ := newTestService()
	atomic := addExam(t, svc, "Atomic", false)
	a := addExam(t, svc, "A", false)

	if err := svc.SetComponents(context.Background(), atomic.ID, []uuid.UUID{a.ID}); err == nil {
		t.Error("expected rejection: parent is not a panel")
	}
}

func TestSetComponentsRejectsUnknownCandidate(t *testing.T) {
	svc, _, _ := newTestService()
	panel := addExam(t, svc, "Panel", true)

	err := svc.SetComponents(context.Background(), panel.ID, []uuid.UUID{uuid.New()})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateExamLockedComposition(t *testing.T) {
	svc, _, _ := newTestService()
	panel := addExam(t, svc, "Panel", true)
	a := addExam(t, svc, "A", false)
	if err := svc.SetComponents(context.Background(), panel.ID, []uuid.UUID{a.ID}); err != nil {
		t.Fatalf("set components: %v", err)
	}

	// panel has saved components: flipping has_components must fail
	upd := *panel
	upd.HasComponents = false
	if err := svc.UpdateExam(context.Background(), &upd); !errors.Is(err, ErrExamLocked) {
		t.Errorf("expected ErrExamLocked for panel with components, got %v", err)
	}

	// a is referenced as a component: making it a panel must fail
	upd2 := *a
	upd2.HasComponents = true
	if err := svc.UpdateExam(context.Background(), &upd2); !errors.Is(err, ErrExamLocked) {
		t.Errorf("expected ErrExamLocked for referenced component, got %v", err)
	}

	// renaming without flipping stays allowed
	upd3 := *panel
	upd3.Name = "Renamed Panel"
	if err := svc.UpdateExam(context.Background(), &upd3); err != nil {
		t.Errorf("rename: %v", err)
	}
}

func TestComponentCandidatesExcludePanels(t *testing.T) {
	svc, _, _ := newTestService()
	addExam(t, svc, "Panel", true)
	addExam(t, svc, "Atomic", false)

	items, err := svc.ComponentCandidates(context.Background())
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Atomic" {
		t.Errorf("expected only atomic exams, got %v", items)
	}
}
