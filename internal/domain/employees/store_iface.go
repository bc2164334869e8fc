package employees

import "context"

type StoreAPI interface {
	ListActive(ctx context.Context) ([]Employee, error)
	ListAll(ctx context.Context) ([]Employee, error)
	ListActiveSummaries(ctx context.Context) ([]Summary, error)
	Get(ctx context.Context, id string) (Employee, error)
	Create(ctx context.Context, in Input, enroll Enroll) error
	Update(ctx context.Context, id string, in Input) error
	SetActive(ctx context.Context, id string, active bool) error
	History(ctx context.Context, id string) (History, error)
}
