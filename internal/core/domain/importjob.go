package domain

// Bulk import job statuses. Anything other than PENDING/RUNNING is
// terminal for the submission wait.
const (
	ImportJobPending   = "PENDING"
	ImportJobRunning   = "RUNNING"
	ImportJobCompleted = "COMPLETED"
	ImportJobFailed    = "FAILED"
)

// ImportJobSpec describes a bulk time-series import of one object-store
// file into the asset-management service.
type ImportJobSpec struct {
	Name        string
	RoleARN     string
	Bucket      string
	Key         string
	ErrorPrefix string
	Columns     []string
}

// ImportDataColumns is the column layout of generated historical data
// files, matching the bulk import CSV contract.
var ImportDataColumns = []string{
	"ALIAS", "DATA_TYPE", "TIMESTAMP_SECONDS", "TIMESTAMP_NANO_OFFSET", "QUALITY", "VALUE",
}

// Metadata transfer job states. COMPLETED and ERROR are terminal.
const (
	TransferJobRunning   = "RUNNING"
	TransferJobCompleted = "COMPLETED"
	TransferJobError     = "ERROR"
)

// TransferProgress is the per-row outcome counters of a metadata
// transfer job.
type TransferProgress struct {
	Total     int
	Succeeded int
	Skipped   int
	Failed    int
}

// TransferJobStatus is a snapshot of a metadata transfer job.
type TransferJobStatus struct {
	State     string
	Progress  TransferProgress
	ReportURL string
}
