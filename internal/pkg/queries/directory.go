package queries

const (
	GetUserByID = `
		SELECT id, hospital_id, role, full_name, email, is_active
		FROM users
		WHERE id = $1
	`

	GetPatientByExternalID = `
		SELECT id, external_id, hospital_id, first_name, last_name, gender, birth_date, medical_record_number
		FROM patients
		WHERE external_id = $1
	`

	GetPatientByID = `
		SELECT id, external_id, hospital_id, first_name, last_name, gender, birth_date, medical_record_number
		FROM patients
		WHERE id = $1
	`

	GetLatestConsent = `
		SELECT id, patient_id, requesting_user_id, requesting_hospital_id, data_type, granted_at, expires_at, is_revoked
		FROM patient_consents
		WHERE patient_id = $1 AND requesting_user_id = $2 AND requesting_hospital_id = $3
			AND data_type = $4 AND is_revoked = FALSE
		ORDER BY granted_at DESC
		LIMIT 1
	`
)
