package mssql

import "fmt"

// formatDataType renders a column type the way SQL Server displays it:
// character and binary types carry their length (MAX when unbounded),
// nvarchar/nchar lengths are halved from bytes to characters, decimal
// and numeric carry precision and scale, float carries precision.
func formatDataType(name string, maxLength, precision, scale int) string {
	switch name {
	case "varchar", "char", "binary", "varbinary":
		if maxLength == -1 {
			return name + "(MAX)"
		}
		return fmt.Sprintf("%s(%d)", name, maxLength)
	case "nvarchar", "nchar":
		if maxLength == -1 {
			return name + "(MAX)"
		}
		return fmt.Sprintf("%s(%d)", name, maxLength/2)
	case "decimal", "numeric":
		return fmt.Sprintf("%s(%d,%d)", name, precision, scale)
	case "float":
		return fmt.Sprintf("%s(%d)", name, precision)
	default:
		return name
	}
}
