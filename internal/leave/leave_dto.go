package leave

type SubmitLeaveRequest struct {
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Reason    string `json:"reason"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type BalanceResponse struct {
	EmployeeID int64 `json:"employee_id"`
	Year       int   `json:"year"`
	Allotment  int   `json:"allotment"`
	Used       int   `json:"used"`
	Balance    int   `json:"balance"`
}

type LeaveResponse struct {
	ID         int64  `json:"id"`
	EmployeeID int64  `json:"employee_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Reason     string `json:"reason"`
	Status     string `json:"status"`
}

type LeaveWithBalanceResponse struct {
	ID           int64  `json:"id"`
	EmployeeID   int64  `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Reason       string `json:"reason"`
	Status       string `json:"status"`
	Balance      int    `json:"balance"`
}

type EmployeeLeaveResponse struct {
	ID           int64  `json:"id"`
	EmployeeName string `json:"employee_name"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Reason       string `json:"reason"`
	Status       string `json:"status"`
}
