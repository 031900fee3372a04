package queries

const (
	endpointColumns = `
		id, hospital_id, data_type, url_template, http_method, api_key_cipher,
		bearer_token_cipher, parameters, allowed_roles, sample_patient_id, is_valid,
		last_validation_error, last_validated_at, created_at, updated_at
	`

	InsertEndpoint = `
		INSERT INTO endpoint_configs (` + endpointColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	GetEndpointByID = `
		SELECT ` + endpointColumns + `
		FROM endpoint_configs
		WHERE id = $1
	`

	GetEndpointsByHospital = `
		SELECT ` + endpointColumns + `
		FROM endpoint_configs
		WHERE hospital_id = $1
		ORDER BY data_type ASC
	`

	GetEndpointByHospitalAndDataType = `
		SELECT ` + endpointColumns + `
		FROM endpoint_configs
		WHERE hospital_id = $1 AND data_type = $2
	`

	UpdateEndpoint = `
		UPDATE endpoint_configs
		SET url_template = $2, http_method = $3, api_key_cipher = $4, bearer_token_cipher = $5,
			parameters = $6, allowed_roles = $7, sample_patient_id = $8, is_valid = NULL,
			last_validation_error = NULL, last_validated_at = NULL, updated_at = $9
		WHERE id = $1
	`

	UpdateEndpointValidation = `
		UPDATE endpoint_configs
		SET is_valid = $2, last_validation_error = $3, last_validated_at = $4, updated_at = $4
		WHERE id = $1
	`

	DeleteEndpoint = `
		DELETE FROM endpoint_configs
		WHERE id = $1
	`
)
