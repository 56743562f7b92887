// Package turnover enforces the annual ceiling on the aggregate plant
// capacity allowed to change technology. Plants that do not fit the year's
// budget keep their technology and join a waiting list that is carried to
// the next year, deferring their investment schedule.
package turnover
