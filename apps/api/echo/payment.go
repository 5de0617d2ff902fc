package echoapi

import (
	"io"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/payment"
)

type paymentApi struct {
	svc      payment.Service
	receipts payment.ReceiptStore
}

func registerPaymentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := paymentApi{svc: deps.PaymentSvc, receipts: deps.ReceiptStore}

	pg := g.Group("/payments", jwt, adminMiddleware())
	dg := pg.Group("/:id")
	dg.POST("/pay", api.paymentMarkPaid)
	dg.GET("/receipt", api.paymentReceipt)
	dg.DELETE("", api.paymentDestroy)
}

func (api *paymentApi) getPayment(ctx echo.Context) (payment.Payment, error) {
	pmt, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == payment.ErrNotFound {
			return payment.Payment{}, errHttpNotFound
		}
		return payment.Payment{}, err
	}
	return pmt, nil
}

func (api *paymentApi) paymentMarkPaid(ctx echo.Context) error {
	pmt, err := api.getPayment(ctx)
	if err != nil {
		return err
	}
	pmt, err = api.svc.MarkPaid(ctx.Request().Context(), pmt.ID, actorID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, pmt)
}

func (api *paymentApi) paymentReceipt(ctx echo.Context) error {
	pmt, err := api.getPayment(ctx)
	if err != nil {
		return err
	}
	if pmt.ReceiptPath == "" {
		return errHttpNotFound
	}

	f, err := api.receipts.Open(pmt.ReceiptPath)
	if err != nil {
		return errHttpNotFound
	}
	defer func() { _ = f.Close() }()

	res := ctx.Response()
	res.Header().Set(echo.HeaderContentDisposition, "attachment; filename="+filepath.Base(pmt.ReceiptPath))
	res.WriteHeader(http.StatusOK)
	_, err = io.Copy(res, f)
	return errors.Wrap(err, "writing receipt")
}

func (api *paymentApi) paymentDestroy(ctx echo.Context) error {
	pmt, err := api.getPayment(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), pmt.ID, actorID(ctx)); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
