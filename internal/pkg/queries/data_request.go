package queries

const (
	dataRequestColumns = `
		id, requesting_user_id, requesting_hospital_id, patient_id, patient_hospital_id,
		approving_user_id, data_type, purpose, is_cross_hospital_request, is_role_authorized,
		is_consent_valid, status, request_date, response_date, approval_date,
		response_time_ms, response_data, denial_reason, error_code, updated_at
	`

	InsertDataRequest = `
		INSERT INTO data_requests (` + dataRequestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	GetDataRequestByID = `
		SELECT ` + dataRequestColumns + `
		FROM data_requests
		WHERE id = $1
	`

	GetPendingDataRequestsByHospital = `
		SELECT ` + dataRequestColumns + `
		FROM data_requests
		WHERE patient_hospital_id = $1 AND status = 'Pending'
		ORDER BY request_date ASC
	`

	GetDataRequestHistoryByUser = `
		SELECT ` + dataRequestColumns + `
		FROM data_requests
		WHERE requesting_user_id = $1 OR approving_user_id = $1
		ORDER BY request_date DESC
	`

	// The status guard makes concurrent approvals race on the row update;
	// only the first writer sees a row affected.
	FinalizePendingDataRequest = `
		UPDATE data_requests
		SET status = $2, approving_user_id = $3, approval_date = $4, response_date = $5,
			response_time_ms = $6, response_data = $7, denial_reason = $8, error_code = $9,
			is_consent_valid = $10, updated_at = $11
		WHERE id = $1 AND status = 'Pending'
	`
)
