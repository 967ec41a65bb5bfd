package handlers

import (
	"errors"
	"net/http"

	"lambda-jsonapi/internal/repositories"
	"lambda-jsonapi/pkg/apierror"
	"lambda-jsonapi/pkg/controller"
	"lambda-jsonapi/pkg/jsonapi"
)

// respondError renders validation failures as 422 documents and turns
// repository errors into API errors for the rescuer. Anything else is
// returned unchanged.
func respondError(c *controller.Context, err error) error {
	if _, ok := jsonapi.ValidationErrors(err); ok {
		return c.Render(err)
	}

	var repoErr *repositories.RepositoryError
	if !errors.As(err, &repoErr) {
		return err
	}

	switch {
	case repositories.IsNotFound(err):
		return apierror.Wrap(http.StatusNotFound, repoErr)
	case repositories.IsDuplicate(err):
		return apierror.Wrap(http.StatusConflict, repoErr).WithCode("duplicate")
	}
	return err
}
