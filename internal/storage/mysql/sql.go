package mysql

const getUserSQL = `
SELECT id, username, first_name, last_name, email, password_hash
FROM users
WHERE username = ?
`

const insertUserSQL = `
INSERT INTO users (username, first_name, last_name, email, password_hash)
VALUES (?, ?, ?, ?, ?)
`

const countMakesSQL = `SELECT COUNT(*) FROM car_makes`

const insertMakeSQL = `
INSERT INTO car_makes (name, description)
VALUES (?, ?)
ON DUPLICATE KEY UPDATE
  description = VALUES(description),
  id          = LAST_INSERT_ID(id)
`

const insertModelSQL = `
INSERT INTO car_models (car_make_id, name, type, year, dealer_id)
VALUES (?, ?, ?, ?, ?)
`

// One row per model with its make name, ordered for stable output.
const listCarModelsSQL = `
SELECT m.name, k.name
FROM car_models m
JOIN car_makes k ON k.id = m.car_make_id
ORDER BY k.name, m.name, m.id
`
