package mssql

// Discovery reads sys.* catalog views rather than INFORMATION_SCHEMA:
// the catalog exposes max_length/precision/scale for faithful type
// rendering and sys.partitions for cheap row counts.

const queryColumns = `
SELECT s.name AS schema_name,
       t.name AS table_name,
       c.name AS column_name,
       ty.name AS data_type,
       c.max_length,
       c.precision,
       c.scale,
       c.is_nullable,
       ISNULL(dc.definition, '') AS default_definition
FROM sys.columns c
INNER JOIN sys.tables t ON c.object_id = t.object_id
INNER JOIN sys.schemas s ON t.schema_id = s.schema_id
INNER JOIN sys.types ty ON c.user_type_id = ty.user_type_id
LEFT JOIN sys.default_constraints dc ON c.default_object_id = dc.object_id
ORDER BY s.name, t.name, c.column_id
`

const queryPrimaryKeys = `
SELECT s.name AS schema_name,
       t.name AS table_name,
       c.name AS column_name
FROM sys.key_constraints kc
INNER JOIN sys.tables t ON kc.parent_object_id = t.object_id
INNER JOIN sys.schemas s ON t.schema_id = s.schema_id
INNER JOIN sys.index_columns ic ON kc.parent_object_id = ic.object_id
    AND kc.unique_index_id = ic.index_id
INNER JOIN sys.columns c ON ic.object_id = c.object_id
    AND ic.column_id = c.column_id
WHERE kc.type = 'PK'
ORDER BY s.name, t.name, ic.key_ordinal
`

const queryConstraintCounts = `
SELECT s.name AS schema_name,
       t.name AS table_name,
       COUNT(o.object_id) AS constraint_count
FROM sys.tables t
INNER JOIN sys.schemas s ON t.schema_id = s.schema_id
LEFT JOIN sys.objects o ON o.parent_object_id = t.object_id
    AND o.type IN ('PK', 'UQ', 'F', 'C', 'D')
GROUP BY s.name, t.name
`

const queryRowCounts = `
SELECT s.name AS schema_name,
       t.name AS table_name,
       SUM(p.rows) AS row_count
FROM sys.tables t
INNER JOIN sys.schemas s ON t.schema_id = s.schema_id
INNER JOIN sys.partitions p ON t.object_id = p.object_id
WHERE p.index_id IN (0, 1)
GROUP BY s.name, t.name
`

const queryViews = `
SELECT s.name AS schema_name,
       v.name AS view_name
FROM sys.views v
INNER JOIN sys.schemas s ON v.schema_id = s.schema_id
ORDER BY s.name, v.name
`

const queryProcedures = `
SELECT s.name AS schema_name,
       p.name AS procedure_name,
       p.create_date,
       p.modify_date
FROM sys.procedures p
INNER JOIN sys.schemas s ON p.schema_id = s.schema_id
ORDER BY s.name, p.name
`

const queryFunctions = `
SELECT s.name AS schema_name,
       o.name AS function_name,
       o.create_date,
       o.modify_date
FROM sys.objects o
INNER JOIN sys.schemas s ON o.schema_id = s.schema_id
WHERE o.type IN ('FN', 'IF', 'TF', 'FS', 'FT')
ORDER BY s.name, o.name
`
