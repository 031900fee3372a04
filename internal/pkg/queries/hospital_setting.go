package queries

const (
	hospitalSettingColumns = `
		id, hospital_id, name, fhir_base_url, http_method, timeout_seconds, api_key_cipher,
		bearer_token_cipher, is_active, is_valid, last_validation_error, last_validated_at,
		created_at, updated_at
	`

	InsertHospitalSetting = `
		INSERT INTO hospital_settings (` + hospitalSettingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	GetHospitalSettingByID = `
		SELECT ` + hospitalSettingColumns + `
		FROM hospital_settings
		WHERE id = $1
	`

	GetHospitalSettingsByHospital = `
		SELECT ` + hospitalSettingColumns + `
		FROM hospital_settings
		WHERE hospital_id = $1
		ORDER BY created_at DESC
	`

	GetActiveHospitalSettingByHospital = `
		SELECT ` + hospitalSettingColumns + `
		FROM hospital_settings
		WHERE hospital_id = $1 AND is_active = TRUE
		ORDER BY updated_at DESC
		LIMIT 1
	`

	UpdateHospitalSetting = `
		UPDATE hospital_settings
		SET name = $2, fhir_base_url = $3, http_method = $4, timeout_seconds = $5,
			api_key_cipher = $6, bearer_token_cipher = $7, is_valid = NULL,
			last_validation_error = NULL, last_validated_at = NULL, updated_at = $8
		WHERE id = $1 AND is_active = TRUE
	`

	UpdateHospitalSettingValidation = `
		UPDATE hospital_settings
		SET is_valid = $2, last_validation_error = $3, last_validated_at = $4, updated_at = $4
		WHERE id = $1
	`

	DeactivateHospitalSetting = `
		UPDATE hospital_settings
		SET is_active = FALSE, updated_at = $2
		WHERE id = $1 AND is_active = TRUE
	`
)
